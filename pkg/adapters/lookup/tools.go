package lookup

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Tool names exposed to the model
const (
	ToolNamePostal  = "postal_code_lookup"
	ToolNameSpecies = "pokemon_lookup"
	ToolNameGeo     = "brazil_geography_lookup"
	ToolNameWeather = "weather_lookup"
	ToolNameMedia   = "tv_show_lookup"
)

// NewToolSet builds the full set of gollem tools over fresh tool instances
func NewToolSet() []gollem.Tool {
	return []gollem.Tool{
		&postalGollemTool{tool: NewPostalTool()},
		&speciesGollemTool{tool: NewSpeciesTool()},
		&geoGollemTool{tool: NewGeoTool()},
		&weatherGollemTool{tool: NewWeatherTool()},
		&mediaGollemTool{tool: NewMediaTool()},
	}
}

// KnowledgeSeeds describes each tool's capability as a plain text, used to
// seed the similarity index so relevant capabilities surface as context
func KnowledgeSeeds() []string {
	return []string{
		"Postal code lookup: resolves Brazilian CEP codes to full addresses with street, district, city, state and area code. Use when the user mentions a CEP or asks about a Brazilian address.",
		"Pokemon lookup: returns species data for a Pokemon by English name or Pokedex number, including types, height, weight, abilities and base stats.",
		"Brazilian geography lookup: resolves states and municipalities through IBGE, returning region, IBGE codes, mesoregion and microregion.",
		"Weather lookup: returns current conditions and a three-day forecast for any city or place name worldwide, including temperature, humidity and wind.",
		"TV show lookup: returns metadata for a TV series, including genres, status, premiere date, rating, network and a summary.",
	}
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", goerr.New("missing required argument", goerr.V("argument", key))
	}
	s, ok := raw.(string)
	if !ok {
		return "", goerr.New("argument must be a string", goerr.V("argument", key))
	}
	return s, nil
}

type postalGollemTool struct {
	tool *PostalTool
}

func (t *postalGollemTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        ToolNamePostal,
		Description: "Look up a Brazilian postal code (CEP) and return the full address. The CEP has 8 digits, with or without a hyphen.",
		Parameters: map[string]*gollem.Parameter{
			"cep": {
				Type:        gollem.TypeString,
				Description: "The Brazilian postal code to resolve, e.g. 01310-100",
			},
		},
		Required: []string{"cep"},
	}
}

func (t *postalGollemTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	cep, err := stringArg(args, "cep")
	if err != nil {
		return nil, err
	}
	result := t.tool.Execute(ctx, cep)
	return map[string]any{"result": t.tool.Format(result)}, nil
}

type speciesGollemTool struct {
	tool *SpeciesTool
}

func (t *speciesGollemTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        ToolNameSpecies,
		Description: "Look up a Pokemon by English name or Pokedex number and return its types, size, abilities and base stats.",
		Parameters: map[string]*gollem.Parameter{
			"identifier": {
				Type:        gollem.TypeString,
				Description: "Pokemon name in English or Pokedex number, e.g. pikachu or 25",
			},
		},
		Required: []string{"identifier"},
	}
}

func (t *speciesGollemTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	identifier, err := stringArg(args, "identifier")
	if err != nil {
		return nil, err
	}
	result := t.tool.Execute(ctx, identifier)
	return map[string]any{"result": t.tool.Format(result)}, nil
}

type geoGollemTool struct {
	tool *GeoTool
}

func (t *geoGollemTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        ToolNameGeo,
		Description: "Look up a Brazilian state or municipality through IBGE. Accepts a state abbreviation (SP), a state name (Sao Paulo) or a municipality name (Campinas).",
		Parameters: map[string]*gollem.Parameter{
			"query": {
				Type:        gollem.TypeString,
				Description: "State abbreviation, state name or municipality name",
			},
		},
		Required: []string{"query"},
	}
}

func (t *geoGollemTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	result := t.tool.Execute(ctx, query)
	return map[string]any{"result": t.tool.Format(result)}, nil
}

type weatherGollemTool struct {
	tool *WeatherTool
}

func (t *weatherGollemTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        ToolNameWeather,
		Description: "Get current weather conditions and a three-day forecast for a city or place name anywhere in the world.",
		Parameters: map[string]*gollem.Parameter{
			"location": {
				Type:        gollem.TypeString,
				Description: "City or place name, e.g. Sao Paulo or Tokyo",
			},
		},
		Required: []string{"location"},
	}
}

func (t *weatherGollemTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	location, err := stringArg(args, "location")
	if err != nil {
		return nil, err
	}
	result := t.tool.Execute(ctx, location)
	return map[string]any{"result": t.tool.Format(result)}, nil
}

type mediaGollemTool struct {
	tool *MediaTool
}

func (t *mediaGollemTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        ToolNameMedia,
		Description: "Look up a TV series by name and return its genres, status, premiere date, rating, network and summary.",
		Parameters: map[string]*gollem.Parameter{
			"query": {
				Type:        gollem.TypeString,
				Description: "TV show name, e.g. Breaking Bad",
			},
		},
		Required: []string{"query"},
	}
}

func (t *mediaGollemTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	result := t.tool.Execute(ctx, query)
	return map[string]any{"result": t.tool.Format(result)}, nil
}
