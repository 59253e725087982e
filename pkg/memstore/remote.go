package memstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultRemoteTimeout bounds every call to the vector service.
const DefaultRemoteTimeout = 30 * time.Second

// Remote is a Store backed by an external vector service exposing
// POST /vectorize, POST /search, GET|DELETE /memory/{id} and POST /memories.
type Remote struct {
	client  *http.Client
	baseURL string
}

// RemoteConfig configures a Remote store.
type RemoteConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewRemote creates a Remote store.
func NewRemote(cfg *RemoteConfig) (*Remote, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("NewRemote: base URL is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultRemoteTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Remote{client: client, baseURL: baseURL}, nil
}

type vectorizeRequest struct {
	Text   string `json:"text"`
	UserID string `json:"user_id"`
}

type vectorizeResponse struct {
	VectorID string `json:"vector_id"`
}

type searchRequest struct {
	Text       string   `json:"text"`
	UserID     string   `json:"user_id"`
	Limit      int      `json:"limit"`
	Threshold  float64  `json:"threshold"`
	Categories []string `json:"categories,omitempty"`
}

type listRequest struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

type memoriesResponse struct {
	Memories []Record `json:"memories"`
}

// Search posts the query to /search.
func (r *Remote) Search(ctx context.Context, req SearchRequest) ([]Record, error) {
	var out memoriesResponse
	err := r.do(ctx, http.MethodPost, "/search", searchRequest{
		Text:       req.Query,
		UserID:     req.UserID,
		Limit:      req.Limit,
		Threshold:  req.Threshold,
		Categories: req.Categories,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	return nonNil(out.Memories), nil
}

// Store posts text to /vectorize and returns the service's vector ID.
func (r *Remote) Store(ctx context.Context, text, userID string) (string, error) {
	var out vectorizeResponse
	if err := r.do(ctx, http.MethodPost, "/vectorize", vectorizeRequest{Text: text, UserID: userID}, &out); err != nil {
		return "", fmt.Errorf("Store: %w", err)
	}
	if out.VectorID == "" {
		return "", errors.New("Store: vector service returned no vector_id")
	}
	return out.VectorID, nil
}

// Get fetches /memory/{id}.
func (r *Remote) Get(ctx context.Context, id string) (*Record, error) {
	var out Record
	if err := r.do(ctx, http.MethodGet, "/memory/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}

// Delete issues DELETE /memory/{id}.
func (r *Remote) Delete(ctx context.Context, id string) error {
	if err := r.do(ctx, http.MethodDelete, "/memory/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// List posts to /memories.
func (r *Remote) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	var out memoriesResponse
	if err := r.do(ctx, http.MethodPost, "/memories", listRequest{UserID: userID, Limit: limit}, &out); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return nonNil(out.Memories), nil
}

// Close releases idle connections.
func (r *Remote) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// do sends body as JSON and decodes the reply into out when out is non-nil.
// A 404 maps to ErrNotFound.
func (r *Remote) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("vector service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func nonNil(records []Record) []Record {
	if records == nil {
		return []Record{}
	}
	return records
}
