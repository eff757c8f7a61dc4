// Package builtin provides ready-made tools backed by public HTTP APIs:
// current weather (wttr.in), web search (SerpApi), attraction search
// (Tavily) and readable page extraction.
//
// Every tool accepts an *http.Client and a base URL so it can be pointed at
// a test server or a proxy.
package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/hupe1980/reactmesh/tool"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20
	userAgent       = "reactmesh/1.0"
)

// Options configures the tools created by New.
type Options struct {
	HTTPClient *http.Client

	// SerpAPIKey authenticates google_search.
	SerpAPIKey string
	// TavilyAPIKey authenticates get_attraction.
	TavilyAPIKey string
}

var constructors = map[string]func(o Options) tool.Tool{
	WeatherToolName: func(o Options) tool.Tool {
		return NewWeatherTool(func(w *WeatherOptions) { w.HTTPClient = o.HTTPClient })
	},
	SearchToolName: func(o Options) tool.Tool {
		return NewSearchTool(func(s *SearchOptions) {
			s.HTTPClient = o.HTTPClient
			s.APIKey = o.SerpAPIKey
		})
	},
	AttractionToolName: func(o Options) tool.Tool {
		return NewAttractionTool(func(a *AttractionOptions) {
			a.HTTPClient = o.HTTPClient
			a.APIKey = o.TavilyAPIKey
		})
	},
	WebFetchToolName: func(o Options) tool.Tool {
		return NewWebFetchTool(func(w *WebFetchOptions) { w.HTTPClient = o.HTTPClient })
	},
}

// Names lists the built-in tool names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the built-in tool called name.
func New(name string, opts Options) (tool.Tool, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in tool %q (available: %v)", name, Names())
	}
	return ctor(opts), nil
}

// Register adds the named built-in tools to r.
func Register(r *tool.Registry, opts Options, names ...string) error {
	for _, name := range names {
		t, err := New(name, opts)
		if err != nil {
			return err
		}
		r.Register(t)
	}
	return nil
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}

// do sends req and returns the response body, failing on non-2xx statuses.
func do(ctx context.Context, client *http.Client, req *http.Request) ([]byte, http.Header, error) {
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	return body, resp.Header, nil
}

// StatusError reports a non-successful HTTP response from an upstream API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, e.Body)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "... [truncated]"
}
