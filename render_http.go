package mdrtf

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPRenderRequest configures HTTPRender.
type HTTPRenderRequest struct {
	URL     string
	Client  *http.Client
	Writer  io.Writer
	Theme   Theme
	Options []Option
}

// HTTPRender fetches Markdown over HTTP(S) and writes RTF. Relative image
// references resolve against the document URL with the same client, unless
// an option sets another image resolver.
func HTTPRender(ctx context.Context, req HTTPRenderRequest) ([]Diagnostic, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("render http: URL is required")
	}
	if req.Writer == nil {
		return nil, fmt.Errorf("render http: Writer is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	client := req.Client
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("render http: build request: %w", err)
	}
	if httpReq.URL.Scheme != "http" && httpReq.URL.Scheme != "https" {
		return nil, fmt.Errorf("render http: unsupported scheme %q", httpReq.URL.Scheme)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("render http: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("render http: status %s", resp.Status)
	}
	base := httpReq.URL
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	opts := append([]Option{WithImageResolver(&Resolver{BaseURL: base, Client: client})}, req.Options...)
	return Render(ctx, RenderRequest{
		Reader:  resp.Body,
		Writer:  req.Writer,
		Theme:   req.Theme,
		Options: opts,
	})
}
