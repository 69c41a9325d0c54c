package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/m-mizutani/kasumi/pkg/domain/model/lookup"
)

const tvMazeBaseURL = "https://api.tvmaze.com"

// MediaTool resolves TV show metadata through TVMaze
type MediaTool struct {
	client  *http.Client
	baseURL string
}

// MediaOption is a functional option for MediaTool
type MediaOption func(*MediaTool)

// WithMediaBaseURL overrides the upstream endpoint
func WithMediaBaseURL(url string) MediaOption {
	return func(t *MediaTool) {
		t.baseURL = strings.TrimSuffix(url, "/")
	}
}

// NewMediaTool creates a new TV show lookup tool
func NewMediaTool(opts ...MediaOption) *MediaTool {
	t := &MediaTool{
		client:  newHTTPClient(),
		baseURL: tvMazeBaseURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tvMazeSearchItem struct {
	Show struct {
		Name      string   `json:"name"`
		Genres    []string `json:"genres"`
		Status    string   `json:"status"`
		Premiered string   `json:"premiered"`
		Rating    struct {
			Average float64 `json:"average"`
		} `json:"rating"`
		Network *struct {
			Name string `json:"name"`
		} `json:"network"`
		WebChannel *struct {
			Name string `json:"name"`
		} `json:"webChannel"`
		Summary string `json:"summary"`
		URL     string `json:"url"`
	} `json:"show"`
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Execute searches for a show by name, preferring an exact title match over
// the first search hit
func (t *MediaTool) Execute(ctx context.Context, query string) lookup.MediaResult {
	q := strings.TrimSpace(query)
	if q == "" {
		return lookup.Failure{Message: "query is required: use a TV show name"}
	}

	var items []tvMazeSearchItem
	searchURL := fmt.Sprintf("%s/search/shows?q=%s", t.baseURL, url.QueryEscape(q))
	if err := getJSON(ctx, t.client, searchURL, &items); err != nil {
		return lookup.Failure{Message: fmt.Sprintf("TV show lookup failed: %v", err)}
	}

	if len(items) == 0 {
		return lookup.ShowNotFound{Query: q}
	}

	chosen := items[0]
	lower := strings.ToLower(q)
	for _, item := range items {
		if strings.ToLower(item.Show.Name) == lower {
			chosen = item
			break
		}
	}

	show := chosen.Show
	network := ""
	if show.Network != nil {
		network = show.Network.Name
	} else if show.WebChannel != nil {
		network = show.WebChannel.Name
	}

	return lookup.ShowInfo{
		Name:      show.Name,
		Genres:    show.Genres,
		Status:    show.Status,
		Premiered: show.Premiered,
		Rating:    show.Rating.Average,
		Network:   network,
		Summary:   strings.TrimSpace(htmlTagPattern.ReplaceAllString(show.Summary, "")),
		URL:       show.URL,
	}
}

// Format renders a media result for display
func (t *MediaTool) Format(result lookup.MediaResult) string {
	switch r := result.(type) {
	case lookup.ShowInfo:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n", r.Name)
		if len(r.Genres) > 0 {
			fmt.Fprintf(&b, "Genres: %s\n", strings.Join(r.Genres, ", "))
		}
		fmt.Fprintf(&b, "Status: %s\n", r.Status)
		if r.Premiered != "" {
			fmt.Fprintf(&b, "Premiered: %s\n", r.Premiered)
		}
		if r.Rating > 0 {
			fmt.Fprintf(&b, "Rating: %.1f/10\n", r.Rating)
		}
		if r.Network != "" {
			fmt.Fprintf(&b, "Network: %s\n", r.Network)
		}
		if r.Summary != "" {
			fmt.Fprintf(&b, "\n%s\n", r.Summary)
		}
		return strings.TrimSpace(b.String())
	case lookup.ShowNotFound:
		return fmt.Sprintf("No TV show found for %q", r.Query)
	case lookup.Failure:
		return r.Message
	default:
		return fmt.Sprintf("%v", result)
	}
}
