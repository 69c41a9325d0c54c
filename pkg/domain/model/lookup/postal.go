package lookup

// PostalResult is the outcome of a Brazilian postal code (CEP) lookup
type PostalResult interface {
	postalResult()
}

// Address is a successfully resolved postal code
type Address struct {
	CEP        string `json:"cep"`
	Street     string `json:"street"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	AreaCode   string `json:"area_code"`
	IBGECode   string `json:"ibge_code"`
}

// PostalNotFound reports a well-formed CEP that does not exist
type PostalNotFound struct {
	CEP string `json:"cep"`
}

func (Address) postalResult()        {}
func (PostalNotFound) postalResult() {}
