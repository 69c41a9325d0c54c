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

func TestMediaTool_PrefersExactTitleMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Query().Get("q"), "Dark")
		_, _ = w.Write([]byte(`[
			{"show": {"name": "Darkness Rising", "genres": ["Horror"], "status": "Ended",
			          "premiered": "2010-01-01", "rating": {"average": 6.1}, "url": "https://example.com/1"}},
			{"show": {"name": "Dark", "genres": ["Drama", "Science-Fiction"], "status": "Ended",
			          "premiered": "2017-12-01", "rating": {"average": 8.7},
			          "network": null, "webChannel": {"name": "Netflix"},
			          "summary": "<p>A family saga with a <b>supernatural</b> twist.</p>",
			          "url": "https://example.com/2"}}
		]`))
	}))
	defer srv.Close()

	tool := lookupadapter.NewMediaTool(lookupadapter.WithMediaBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "Dark")

	show := gt.Cast[lookup.ShowInfo](t, result)
	gt.Equal(t, show.Name, "Dark")
	gt.Equal(t, show.Network, "Netflix")
	gt.Equal(t, show.Rating, 8.7)
	// HTML tags are stripped from the summary
	gt.Equal(t, show.Summary, "A family saga with a supernatural twist.")

	formatted := tool.Format(result)
	gt.True(t, strings.Contains(formatted, "Drama, Science-Fiction"))
}

func TestMediaTool_FallsBackToFirstHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"show": {"name": "Breaking Bad", "genres": ["Crime"], "status": "Ended",
			          "premiered": "2008-01-20", "rating": {"average": 9.2},
			          "network": {"name": "AMC"}, "url": "https://example.com/bb"}}
		]`))
	}))
	defer srv.Close()

	tool := lookupadapter.NewMediaTool(lookupadapter.WithMediaBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "breaking")

	show := gt.Cast[lookup.ShowInfo](t, result)
	gt.Equal(t, show.Name, "Breaking Bad")
	gt.Equal(t, show.Network, "AMC")
}

func TestMediaTool_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tool := lookupadapter.NewMediaTool(lookupadapter.WithMediaBaseURL(srv.URL))
	result := tool.Execute(context.Background(), "No Such Show")

	gt.Cast[lookup.ShowNotFound](t, result)
}

func TestMediaTool_EmptyQuery(t *testing.T) {
	tool := lookupadapter.NewMediaTool()
	result := tool.Execute(context.Background(), "")

	gt.Cast[lookup.Failure](t, result)
}
