package lookup_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	lookupadapter "github.com/m-mizutani/kasumi/pkg/adapters/lookup"
	"github.com/m-mizutani/kasumi/pkg/domain/model/lookup"
)

func newIBGEServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/localidades/estados/SP", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": 35, "sigla": "SP", "nome": "Sao Paulo",
			"regiao": {"id": 3, "sigla": "SE", "nome": "Sudeste"}
		}`))
	})
	mux.HandleFunc("/localidades/estados", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 35, "sigla": "SP", "nome": "Sao Paulo",
			 "regiao": {"id": 3, "sigla": "SE", "nome": "Sudeste"}}
		]`))
	})
	mux.HandleFunc("/localidades/municipios", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 3509502, "nome": "Campinas",
			 "microrregiao": {"nome": "Campinas", "mesorregiao": {"nome": "Campinas", "UF": {"sigla": "SP"}}}},
			{"id": 2504009, "nome": "Campina Grande",
			 "microrregiao": {"nome": "Campina Grande", "mesorregiao": {"nome": "Agreste Paraibano", "UF": {"sigla": "PB"}}}}
		]`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func TestGeoTool_StateByAbbreviation(t *testing.T) {
	srv := newIBGEServer(t)
	defer srv.Close()

	tool := lookupadapter.NewGeoTool(lookupadapter.WithGeoBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "sp")

	state := gt.Cast[lookup.StateInfo](t, result)
	gt.Equal(t, state.Abbrev, "SP")
	gt.Equal(t, state.Region.Name, "Sudeste")
}

func TestGeoTool_StateByName(t *testing.T) {
	srv := newIBGEServer(t)
	defer srv.Close()

	tool := lookupadapter.NewGeoTool(lookupadapter.WithGeoBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "Sao Paulo")

	state := gt.Cast[lookup.StateInfo](t, result)
	gt.Equal(t, state.ID, 35)
}

func TestGeoTool_MunicipalityExactMatch(t *testing.T) {
	srv := newIBGEServer(t)
	defer srv.Close()

	tool := lookupadapter.NewGeoTool(lookupadapter.WithGeoBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "Campinas")

	mun := gt.Cast[lookup.MunicipalityInfo](t, result)
	gt.Equal(t, mun.Name, "Campinas")
	gt.Equal(t, mun.State, "SP")
}

func TestGeoTool_MunicipalityAmbiguous(t *testing.T) {
	srv := newIBGEServer(t)
	defer srv.Close()

	tool := lookupadapter.NewGeoTool(lookupadapter.WithGeoBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "Campina")

	multi := gt.Cast[lookup.MultipleMatches](t, result)
	gt.A(t, multi.Matches).Length(2)

	formatted := tool.Format(result)
	gt.True(t, strings.Contains(formatted, "be more specific"))
}

func TestGeoTool_NotFound(t *testing.T) {
	srv := newIBGEServer(t)
	defer srv.Close()

	tool := lookupadapter.NewGeoTool(lookupadapter.WithGeoBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "Atlantis City")

	gt.Cast[lookup.GeoNotFound](t, result)
}

func TestGeoTool_EmptyQuery(t *testing.T) {
	tool := lookupadapter.NewGeoTool()
	result := tool.Execute(context.Background(), "  ")

	gt.Cast[lookup.Failure](t, result)
}
