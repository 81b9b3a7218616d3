package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// User is the server's public view of an account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Theme    string `json:"theme"`
}

// AuthResponse is returned by Login and Register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Document is one markdown document.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DocumentSummary is the list view of a document.
type DocumentSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type chatRequest struct {
	Context string `json:"context"`
	Message string `json:"message"`
}

// Client talks to a draftpad server. The zero Token is unauthenticated;
// Login and Register set it.
type Client struct {
	BaseURL string
	Token   string

	http *http.Client
}

// NewClient creates a client for the given server base URL
// (e.g. "http://localhost:3001").
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		// No overall timeout: the chat stream is open-ended.
		http: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
	}
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return nil, err
	}
	c.Token = resp.Token
	return &resp, nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return nil, err
	}
	c.Token = resp.Token
	return &resp, nil
}

// ListDocuments returns summaries of the user's documents.
func (c *Client) ListDocuments(ctx context.Context) ([]DocumentSummary, error) {
	var docs []DocumentSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocument returns one document.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents/"+id, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateDocument creates a document.
func (c *Client) CreateDocument(ctx context.Context, title, content string) (*Document, error) {
	var doc Document
	err := c.doJSON(ctx, http.MethodPost, "/api/documents",
		map[string]string{"title": title, "content": content}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Open sends a chat request and returns the raw relayed byte stream on
// success. A pre-stream failure comes back as *APIError; the stream is
// never half-open. Open satisfies the Relay interface used by Controller.
func (c *Client) Open(ctx context.Context, docContext, message string) (io.ReadCloser, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/chat",
		chatRequest{Context: docContext, Message: message})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}

	return resp.Body, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
