package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/kasumi/pkg/domain/model/lookup"
)

const ibgeBaseURL = "https://servicodados.ibge.gov.br/api/v1"

// maxGeoCandidates limits how many ambiguous municipality names are listed
const maxGeoCandidates = 5

// GeoTool resolves Brazilian states and municipalities through the IBGE
// localities API
type GeoTool struct {
	client  *http.Client
	baseURL string
}

// GeoOption is a functional option for GeoTool
type GeoOption func(*GeoTool)

// WithGeoBaseURL overrides the upstream endpoint
func WithGeoBaseURL(url string) GeoOption {
	return func(t *GeoTool) {
		t.baseURL = strings.TrimSuffix(url, "/")
	}
}

// NewGeoTool creates a new IBGE lookup tool
func NewGeoTool(opts ...GeoOption) *GeoTool {
	t := &GeoTool{
		client:  newHTTPClient(),
		baseURL: ibgeBaseURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type ibgeRegion struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

type ibgeState struct {
	ID     int        `json:"id"`
	Sigla  string     `json:"sigla"`
	Nome   string     `json:"nome"`
	Regiao ibgeRegion `json:"regiao"`
}

type ibgeMunicipality struct {
	ID           int    `json:"id"`
	Nome         string `json:"nome"`
	Microrregiao struct {
		Nome        string `json:"nome"`
		Mesorregiao struct {
			Nome string `json:"nome"`
			UF   struct {
				Sigla string `json:"sigla"`
			} `json:"UF"`
		} `json:"mesorregiao"`
	} `json:"microrregiao"`
}

// Execute resolves a query as state abbreviation, state name or municipality
// name, in that order
func (t *GeoTool) Execute(ctx context.Context, query string) lookup.GeoResult {
	q := strings.TrimSpace(query)
	if q == "" {
		return lookup.Failure{Message: "query is required: use a state abbreviation, state name or municipality name"}
	}

	// Two letters is a UF abbreviation
	if len(q) == 2 {
		return t.lookupState(ctx, strings.ToUpper(q))
	}

	if result, found := t.lookupStateByName(ctx, q); found {
		return result
	}

	return t.lookupMunicipality(ctx, q)
}

func (t *GeoTool) lookupState(ctx context.Context, uf string) lookup.GeoResult {
	var data ibgeState
	url := fmt.Sprintf("%s/localidades/estados/%s", t.baseURL, uf)
	if err := getJSON(ctx, t.client, url, &data); err != nil {
		if errors.Is(err, errNotFound) {
			return lookup.GeoNotFound{Query: uf}
		}
		return lookup.Failure{Message: fmt.Sprintf("IBGE lookup failed: %v", err)}
	}

	// The states endpoint answers unknown abbreviations with 200 and an
	// empty body, which decodes to a zero ID
	if data.ID == 0 {
		return lookup.GeoNotFound{Query: uf}
	}

	return stateInfo(data)
}

func (t *GeoTool) lookupStateByName(ctx context.Context, name string) (lookup.GeoResult, bool) {
	var states []ibgeState
	url := fmt.Sprintf("%s/localidades/estados", t.baseURL)
	if err := getJSON(ctx, t.client, url, &states); err != nil {
		return lookup.Failure{Message: fmt.Sprintf("IBGE lookup failed: %v", err)}, true
	}

	lower := strings.ToLower(name)
	for _, s := range states {
		if strings.ToLower(s.Nome) == lower {
			return stateInfo(s), true
		}
	}
	return nil, false
}

func (t *GeoTool) lookupMunicipality(ctx context.Context, name string) lookup.GeoResult {
	var municipalities []ibgeMunicipality
	url := fmt.Sprintf("%s/localidades/municipios", t.baseURL)
	if err := getJSON(ctx, t.client, url, &municipalities); err != nil {
		return lookup.Failure{Message: fmt.Sprintf("IBGE lookup failed: %v", err)}
	}

	lower := strings.ToLower(name)

	// Exact match wins
	for _, m := range municipalities {
		if strings.ToLower(m.Nome) == lower {
			return municipalityInfo(m)
		}
	}

	// Fall back to substring match
	var matches []ibgeMunicipality
	for _, m := range municipalities {
		if strings.Contains(strings.ToLower(m.Nome), lower) {
			matches = append(matches, m)
		}
	}

	switch {
	case len(matches) == 1:
		return municipalityInfo(matches[0])
	case len(matches) > 1:
		names := make([]string, 0, maxGeoCandidates)
		for _, m := range matches {
			if len(names) == maxGeoCandidates {
				break
			}
			names = append(names, fmt.Sprintf("%s (%s)", m.Nome, m.Microrregiao.Mesorregiao.UF.Sigla))
		}
		return lookup.MultipleMatches{Query: name, Matches: names}
	default:
		return lookup.GeoNotFound{Query: name}
	}
}

func stateInfo(s ibgeState) lookup.StateInfo {
	return lookup.StateInfo{
		ID:     s.ID,
		Abbrev: s.Sigla,
		Name:   s.Nome,
		Region: lookup.RegionInfo{
			ID:     s.Regiao.ID,
			Abbrev: s.Regiao.Sigla,
			Name:   s.Regiao.Nome,
		},
	}
}

func municipalityInfo(m ibgeMunicipality) lookup.MunicipalityInfo {
	return lookup.MunicipalityInfo{
		ID:          m.ID,
		Name:        m.Nome,
		Microregion: m.Microrregiao.Nome,
		Mesoregion:  m.Microrregiao.Mesorregiao.Nome,
		State:       m.Microrregiao.Mesorregiao.UF.Sigla,
	}
}

// Format renders a geo result for display
func (t *GeoTool) Format(result lookup.GeoResult) string {
	switch r := result.(type) {
	case lookup.StateInfo:
		return fmt.Sprintf("%s (%s)\nRegion: %s (%s)\nIBGE code: %d",
			r.Name, r.Abbrev, r.Region.Name, r.Region.Abbrev, r.ID)
	case lookup.MunicipalityInfo:
		return fmt.Sprintf("%s - %s\nIBGE code: %d\nMesoregion: %s\nMicroregion: %s",
			r.Name, r.State, r.ID, r.Mesoregion, r.Microregion)
	case lookup.MultipleMatches:
		var b strings.Builder
		fmt.Fprintf(&b, "Multiple municipalities match %q, be more specific:\n", r.Query)
		for _, m := range r.Matches {
			fmt.Fprintf(&b, "- %s\n", m)
		}
		return strings.TrimSpace(b.String())
	case lookup.GeoNotFound:
		return fmt.Sprintf("No state or municipality found for %q", r.Query)
	case lookup.Failure:
		return r.Message
	default:
		return fmt.Sprintf("%v", result)
	}
}
