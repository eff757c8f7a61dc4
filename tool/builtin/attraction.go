package builtin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hupe1980/reactmesh/tool"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// AttractionToolName is the registry name of the attraction search tool.
const AttractionToolName = "get_attraction"

// AttractionOptions configures the Tavily-backed attraction tool.
type AttractionOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	MaxResults int
}

type attractionArgs struct {
	City    string `arg:"city,required"`
	Weather string `arg:"weather"`
}

// NewAttractionTool returns a tool that recommends sightseeing spots for a
// city, optionally taking the current weather into account.
func NewAttractionTool(optFns ...func(o *AttractionOptions)) *tool.FunctionTool {
	opts := AttractionOptions{
		BaseURL:    "https://api.tavily.com/search",
		MaxResults: 5,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := httpClient(opts.HTTPClient)

	return tool.NewStructTool(AttractionToolName,
		`Recommend tourist attractions for a city and weather. Usage: get_attraction[city="Beijing", weather="Sunny"]`,
		func(ctx context.Context, in attractionArgs) (string, error) {
			if opts.APIKey == "" {
				return "", fmt.Errorf("get_attraction: %w", ErrMissingAPIKey)
			}

			payload, err := attractionRequest(opts.APIKey, attractionQuery(in), opts.MaxResults)
			if err != nil {
				return "", err
			}

			req, err := http.NewRequest(http.MethodPost, opts.BaseURL, bytes.NewReader(payload))
			if err != nil {
				return "", err
			}
			req.Header.Set("Content-Type", "application/json")

			body, _, err := do(ctx, client, req)
			if err != nil {
				return "", fmt.Errorf("get_attraction: %w", err)
			}

			return formatAttractions(in.City, body)
		})
}

func attractionQuery(in attractionArgs) string {
	if in.Weather == "" {
		return fmt.Sprintf("best tourist attractions in %s", in.City)
	}
	return fmt.Sprintf("best tourist attractions in %s for %s weather", in.City, in.Weather)
}

func attractionRequest(apiKey, query string, maxResults int) ([]byte, error) {
	payload := []byte(`{"search_depth":"basic","include_answer":true}`)

	var err error
	for _, kv := range []struct {
		path  string
		value any
	}{
		{"api_key", apiKey},
		{"query", query},
		{"max_results", maxResults},
	} {
		if payload, err = sjson.SetBytes(payload, kv.path, kv.value); err != nil {
			return nil, fmt.Errorf("get_attraction: build request: %w", err)
		}
	}

	return payload, nil
}

func formatAttractions(city string, body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errors.New("get_attraction: invalid JSON response")
	}

	res := gjson.ParseBytes(body)
	if answer := strings.TrimSpace(res.Get("answer").String()); answer != "" {
		return answer, nil
	}

	var lines []string
	res.Get("results").ForEach(func(_, r gjson.Result) bool {
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Get("title").String(), r.Get("content").String()))
		return true
	})

	if len(lines) == 0 {
		return fmt.Sprintf("No attraction recommendations found for %s.", city), nil
	}

	return "Attraction recommendations:\n" + strings.Join(lines, "\n"), nil
}
