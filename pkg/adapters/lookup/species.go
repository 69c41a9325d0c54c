package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/m-mizutani/kasumi/pkg/domain/model/lookup"
)

const pokeAPIBaseURL = "https://pokeapi.co/api/v2"

// SpeciesTool resolves Pokemon by name or Pokedex number through PokeAPI
type SpeciesTool struct {
	client  *http.Client
	baseURL string
}

// SpeciesOption is a functional option for SpeciesTool
type SpeciesOption func(*SpeciesTool)

// WithSpeciesBaseURL overrides the upstream endpoint
func WithSpeciesBaseURL(url string) SpeciesOption {
	return func(t *SpeciesTool) {
		t.baseURL = strings.TrimSuffix(url, "/")
	}
}

// NewSpeciesTool creates a new Pokemon lookup tool
func NewSpeciesTool(opts ...SpeciesOption) *SpeciesTool {
	t := &SpeciesTool{
		client:  newHTTPClient(),
		baseURL: pokeAPIBaseURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// pokeAPIResponse matches the subset of the PokeAPI pokemon payload we use
type pokeAPIResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"` // decimeters
	Weight int    `json:"weight"` // hectograms
	Types  []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability struct {
			Name string `json:"name"`
		} `json:"ability"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

// Execute looks up a Pokemon by name (English) or Pokedex number
func (t *SpeciesTool) Execute(ctx context.Context, identifier string) lookup.SpeciesResult {
	id := strings.ToLower(strings.TrimSpace(identifier))
	if id == "" {
		return lookup.Failure{Message: "identifier is required: use a Pokemon name or Pokedex number"}
	}

	var data pokeAPIResponse
	url := fmt.Sprintf("%s/pokemon/%s", t.baseURL, id)
	if err := getJSON(ctx, t.client, url, &data); err != nil {
		if errors.Is(err, errNotFound) {
			return lookup.SpeciesNotFound{Identifier: id}
		}
		return lookup.Failure{Message: fmt.Sprintf("Pokemon lookup failed: %v", err)}
	}

	info := lookup.SpeciesInfo{
		ID:        data.ID,
		Name:      titleCase(data.Name),
		HeightM:   float64(data.Height) / 10,
		WeightKG:  float64(data.Weight) / 10,
		SpriteURL: data.Sprites.FrontDefault,
		Stats:     make(map[string]int, len(data.Stats)),
	}
	for _, tp := range data.Types {
		info.Types = append(info.Types, titleCase(tp.Type.Name))
	}
	for _, ab := range data.Abilities {
		info.Abilities = append(info.Abilities, titleCase(strings.ReplaceAll(ab.Ability.Name, "-", " ")))
	}
	for _, st := range data.Stats {
		info.Stats[st.Stat.Name] = st.BaseStat
	}

	return info
}

// Format renders a species result for display
func (t *SpeciesTool) Format(result lookup.SpeciesResult) string {
	switch r := result.(type) {
	case lookup.SpeciesInfo:
		var b strings.Builder
		fmt.Fprintf(&b, "%s (#%03d)\n", r.Name, r.ID)
		fmt.Fprintf(&b, "Type: %s\n", strings.Join(r.Types, " / "))
		fmt.Fprintf(&b, "Height: %.1fm\n", r.HeightM)
		fmt.Fprintf(&b, "Weight: %.1fkg\n", r.WeightKG)
		if len(r.Abilities) > 0 {
			fmt.Fprintf(&b, "Abilities: %s\n", strings.Join(r.Abilities, ", "))
		}
		if len(r.Stats) > 0 {
			b.WriteString("Base stats:\n")
			names := make([]string, 0, len(r.Stats))
			for name := range r.Stats {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(&b, "- %s: %d\n", name, r.Stats[name])
			}
		}
		return strings.TrimSpace(b.String())
	case lookup.SpeciesNotFound:
		return fmt.Sprintf("Pokemon %q was not found, check the name or number", r.Identifier)
	case lookup.Failure:
		return r.Message
	default:
		return fmt.Sprintf("%v", result)
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
