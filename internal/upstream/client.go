package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// generateRequest is the body sent to the service's generate endpoint
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Client issues streaming generate requests to an Ollama-compatible
// service. It is a pure transport boundary: the response body is handed
// back untouched, one newline-delimited JSON record per token, and no
// payload interpretation happens here.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an upstream client. connectTimeout bounds the time
// until response headers arrive; once the stream is open there is no
// overall deadline, since generation length is unbounded.
func NewClient(baseURL string, connectTimeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: connectTimeout,
			},
		},
	}
}

// Generate opens one streaming request for the given model and prompt
// and returns the raw response body. Pre-stream failures are reported as
// ErrUnreachable or *RejectedError; read failures on the returned stream
// surface as *StreamInterruptedError.
func (c *Client) Generate(ctx context.Context, model, prompt string) (io.ReadCloser, error) {
	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &RejectedError{Status: resp.StatusCode, Body: string(preview)}
	}

	return &interruptReader{rc: resp.Body}, nil
}

// interruptReader converts read errors other than EOF into
// StreamInterruptedError so callers see one mid-stream failure type.
type interruptReader struct {
	rc io.ReadCloser
}

func (r *interruptReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, &StreamInterruptedError{Err: err}
	}
	return n, err
}

func (r *interruptReader) Close() error {
	return r.rc.Close()
}
