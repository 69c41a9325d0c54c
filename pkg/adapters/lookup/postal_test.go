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

func TestPostalTool_ResolvesAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/01310100/json/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"cep": "01310-100",
			"logradouro": "Avenida Paulista",
			"bairro": "Bela Vista",
			"localidade": "Sao Paulo",
			"uf": "SP",
			"ddd": "11",
			"ibge": "3550308"
		}`))
	}))
	defer srv.Close()

	tool := lookupadapter.NewPostalTool(lookupadapter.WithPostalBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "01310-100")

	addr := gt.Cast[lookup.Address](t, result)
	gt.Equal(t, addr.Street, "Avenida Paulista")
	gt.Equal(t, addr.City, "Sao Paulo")
	gt.Equal(t, addr.State, "SP")

	formatted := tool.Format(result)
	gt.True(t, strings.Contains(formatted, "Avenida Paulista"))
	gt.True(t, strings.Contains(formatted, "SP"))
}

func TestPostalTool_RejectsMalformedCEP(t *testing.T) {
	tool := lookupadapter.NewPostalTool()

	for _, cep := range []string{"", "123", "123456789", "abcdefgh"} {
		result := tool.Execute(context.Background(), cep)
		failure := gt.Cast[lookup.Failure](t, result)
		gt.True(t, strings.Contains(failure.Message, "8 digits"))
	}
}

func TestPostalTool_UnknownCEP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"erro": true}`))
	}))
	defer srv.Close()

	tool := lookupadapter.NewPostalTool(lookupadapter.WithPostalBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "99999999")

	notFound := gt.Cast[lookup.PostalNotFound](t, result)
	gt.Equal(t, notFound.CEP, "99999999")
}

func TestPostalTool_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tool := lookupadapter.NewPostalTool(lookupadapter.WithPostalBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "01310100")

	gt.Cast[lookup.Failure](t, result)
}
