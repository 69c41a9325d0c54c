package lookup

// MediaResult is the outcome of a TV show metadata lookup
type MediaResult interface {
	mediaResult()
}

// ShowInfo is a resolved TV show
type ShowInfo struct {
	Name      string   `json:"name"`
	Genres    []string `json:"genres"`
	Status    string   `json:"status"`
	Premiered string   `json:"premiered"`
	Rating    float64  `json:"rating"`
	Network   string   `json:"network"`
	Summary   string   `json:"summary"`
	URL       string   `json:"url"`
}

// ShowNotFound reports a query matching no show
type ShowNotFound struct {
	Query string `json:"query"`
}

func (ShowInfo) mediaResult()     {}
func (ShowNotFound) mediaResult() {}
