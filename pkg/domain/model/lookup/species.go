package lookup

// SpeciesResult is the outcome of a Pokemon reference lookup
type SpeciesResult interface {
	speciesResult()
}

// SpeciesInfo is a successfully resolved Pokemon
type SpeciesInfo struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	HeightM   float64        `json:"height_m"`
	WeightKG  float64        `json:"weight_kg"`
	Types     []string       `json:"types"`
	Abilities []string       `json:"abilities"`
	Stats     map[string]int `json:"stats"`
	SpriteURL string         `json:"sprite_url"`
}

// SpeciesNotFound reports an unknown name or Pokedex number
type SpeciesNotFound struct {
	Identifier string `json:"identifier"`
}

func (SpeciesInfo) speciesResult()     {}
func (SpeciesNotFound) speciesResult() {}
