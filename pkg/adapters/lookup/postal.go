package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/kasumi/pkg/domain/model/lookup"
)

const viaCEPBaseURL = "https://viacep.com.br/ws"

// PostalTool resolves Brazilian postal codes (CEP) through ViaCEP
type PostalTool struct {
	client  *http.Client
	baseURL string
}

// PostalOption is a functional option for PostalTool
type PostalOption func(*PostalTool)

// WithPostalBaseURL overrides the upstream endpoint
func WithPostalBaseURL(url string) PostalOption {
	return func(t *PostalTool) {
		t.baseURL = strings.TrimSuffix(url, "/")
	}
}

// NewPostalTool creates a new CEP lookup tool
func NewPostalTool(opts ...PostalOption) *PostalTool {
	t := &PostalTool{
		client:  newHTTPClient(),
		baseURL: viaCEPBaseURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// viaCEPResponse matches the ViaCEP JSON payload
type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Complement string `json:"complemento"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	DDD        string `json:"ddd"`
	IBGE       string `json:"ibge"`
	Erro       bool   `json:"erro"`
}

// Execute looks up a CEP, accepting it with or without punctuation
func (t *PostalTool) Execute(ctx context.Context, cep string) lookup.PostalResult {
	digits := onlyDigits(cep)
	if len(digits) != 8 {
		return lookup.Failure{Message: fmt.Sprintf("invalid CEP %q: must contain 8 digits", cep)}
	}

	var data viaCEPResponse
	url := fmt.Sprintf("%s/%s/json/", t.baseURL, digits)
	if err := getJSON(ctx, t.client, url, &data); err != nil {
		if errors.Is(err, errNotFound) {
			return lookup.PostalNotFound{CEP: digits}
		}
		return lookup.Failure{Message: fmt.Sprintf("CEP lookup failed: %v", err)}
	}

	// ViaCEP reports unknown codes with 200 + {"erro": true}
	if data.Erro {
		return lookup.PostalNotFound{CEP: digits}
	}

	return lookup.Address{
		CEP:        data.CEP,
		Street:     data.Logradouro,
		Complement: data.Complement,
		District:   data.Bairro,
		City:       data.Localidade,
		State:      data.UF,
		AreaCode:   data.DDD,
		IBGECode:   data.IBGE,
	}
}

// Format renders a postal result for display
func (t *PostalTool) Format(result lookup.PostalResult) string {
	switch r := result.(type) {
	case lookup.Address:
		var b strings.Builder
		fmt.Fprintf(&b, "Address for CEP %s\n", r.CEP)
		if r.Street != "" {
			fmt.Fprintf(&b, "Street: %s\n", r.Street)
		}
		if r.Complement != "" {
			fmt.Fprintf(&b, "Complement: %s\n", r.Complement)
		}
		if r.District != "" {
			fmt.Fprintf(&b, "District: %s\n", r.District)
		}
		fmt.Fprintf(&b, "City: %s\n", r.City)
		fmt.Fprintf(&b, "State: %s\n", r.State)
		if r.AreaCode != "" {
			fmt.Fprintf(&b, "Area code: %s\n", r.AreaCode)
		}
		return strings.TrimSpace(b.String())
	case lookup.PostalNotFound:
		return fmt.Sprintf("CEP %s was not found", r.CEP)
	case lookup.Failure:
		return r.Message
	default:
		return fmt.Sprintf("%v", result)
	}
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
