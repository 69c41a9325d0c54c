package lookup

// GeoResult is the outcome of a Brazilian geography (IBGE) lookup
type GeoResult interface {
	geoResult()
}

// RegionInfo is the macro region a state belongs to
type RegionInfo struct {
	ID     int    `json:"id"`
	Abbrev string `json:"abbrev"`
	Name   string `json:"name"`
}

// StateInfo is a resolved federative unit
type StateInfo struct {
	ID     int        `json:"id"`
	Abbrev string     `json:"abbrev"`
	Name   string     `json:"name"`
	Region RegionInfo `json:"region"`
}

// MunicipalityInfo is a resolved municipality
type MunicipalityInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Microregion string `json:"microregion"`
	Mesoregion  string `json:"mesoregion"`
	State       string `json:"state"`
}

// MultipleMatches reports an ambiguous query with the candidate names
type MultipleMatches struct {
	Query   string   `json:"query"`
	Matches []string `json:"matches"`
}

// GeoNotFound reports a query matching no state or municipality
type GeoNotFound struct {
	Query string `json:"query"`
}

func (StateInfo) geoResult()        {}
func (MunicipalityInfo) geoResult() {}
func (MultipleMatches) geoResult()  {}
func (GeoNotFound) geoResult()      {}
