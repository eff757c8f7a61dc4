package builtin

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/hupe1980/reactmesh/tool"
)

// WebFetchToolName is the registry name of the page fetch tool.
const WebFetchToolName = "web_fetch"

// WebFetchOptions configures the page fetch tool.
type WebFetchOptions struct {
	HTTPClient *http.Client
	// MaxChars caps the extracted text; 0 disables the cap.
	MaxChars int
}

type webFetchArgs struct {
	URL string `arg:"url,required"`
}

// NewWebFetchTool returns a tool that downloads a page and extracts its
// readable text. Non-HTML responses are returned as-is.
func NewWebFetchTool(optFns ...func(o *WebFetchOptions)) *tool.FunctionTool {
	opts := WebFetchOptions{MaxChars: 8000}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := httpClient(opts.HTTPClient)

	return tool.NewStructTool(WebFetchToolName,
		`Fetch a web page and return its readable text. Usage: web_fetch[url="https://..."]`,
		func(ctx context.Context, in webFetchArgs) (string, error) {
			pageURL, err := url.Parse(in.URL)
			if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
				return "", &tool.ValidationError{Field: "url", Value: in.URL, Message: "expected an absolute http(s) URL"}
			}

			req, err := http.NewRequest(http.MethodGet, pageURL.String(), nil)
			if err != nil {
				return "", err
			}

			body, header, err := do(ctx, client, req)
			if err != nil {
				return "", fmt.Errorf("web_fetch: %w", err)
			}

			if !strings.Contains(header.Get("Content-Type"), "text/html") {
				return truncate(string(body), opts.MaxChars), nil
			}

			article, err := readability.FromReader(bytes.NewReader(body), pageURL)
			if err != nil {
				return "", fmt.Errorf("web_fetch: parse: %w", err)
			}

			var text bytes.Buffer
			if err := article.RenderText(&text); err != nil {
				return "", fmt.Errorf("web_fetch: render: %w", err)
			}

			content := strings.TrimSpace(text.String())
			return fmt.Sprintf("Title: %s\nURL: %s\n\n%s", article.Title(), in.URL, truncate(content, opts.MaxChars)), nil
		})
}
