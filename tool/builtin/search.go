package builtin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hupe1980/reactmesh/tool"
	"github.com/tidwall/gjson"
)

// SearchToolName is the registry name of the web search tool.
const SearchToolName = "google_search"

// ErrMissingAPIKey is returned by tools that need a credential that was not configured.
var ErrMissingAPIKey = errors.New("api key not configured")

// SearchOptions configures the SerpApi-backed search tool.
type SearchOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// NumResults caps the organic results included in the observation.
	NumResults int
}

type searchArgs struct {
	Query string `arg:"query,required"`
}

// NewSearchTool returns a Google search tool backed by SerpApi. Direct
// answers (answer box, knowledge graph) are preferred over result lists.
func NewSearchTool(optFns ...func(o *SearchOptions)) *tool.FunctionTool {
	opts := SearchOptions{
		BaseURL:    "https://serpapi.com/search.json",
		NumResults: 3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := httpClient(opts.HTTPClient)

	return tool.NewStructTool(SearchToolName,
		`Search Google for up-to-date information. Usage: google_search[query="..."]`,
		func(ctx context.Context, in searchArgs) (string, error) {
			if opts.APIKey == "" {
				return "", fmt.Errorf("google_search: %w", ErrMissingAPIKey)
			}

			q := url.Values{}
			q.Set("engine", "google")
			q.Set("q", in.Query)
			q.Set("api_key", opts.APIKey)
			q.Set("num", strconv.Itoa(opts.NumResults))

			req, err := http.NewRequest(http.MethodGet, opts.BaseURL+"?"+q.Encode(), nil)
			if err != nil {
				return "", err
			}

			body, _, err := do(ctx, client, req)
			if err != nil {
				return "", fmt.Errorf("google_search: %w", err)
			}

			return formatSearch(in.Query, body, opts.NumResults)
		})
}

func formatSearch(query string, body []byte, limit int) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errors.New("google_search: invalid JSON response")
	}

	res := gjson.ParseBytes(body)
	if msg := res.Get("error"); msg.Exists() {
		return "", fmt.Errorf("google_search: %s", msg.String())
	}

	for _, path := range []string{"answer_box.answer", "answer_box.snippet", "knowledge_graph.description"} {
		if v := strings.TrimSpace(res.Get(path).String()); v != "" {
			return v, nil
		}
	}

	var b strings.Builder
	n := 0
	res.Get("organic_results").ForEach(func(_, r gjson.Result) bool {
		n++
		fmt.Fprintf(&b, "[%d] %s\n%s\n", n, r.Get("title").String(), r.Get("snippet").String())
		return limit <= 0 || n < limit
	})

	if n == 0 {
		return fmt.Sprintf("No results found for %q.", query), nil
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
