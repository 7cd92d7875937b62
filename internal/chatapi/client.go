package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/madhava696/EACA/internal/sse"
)

const chatPath = "/api/chat"

// APIError is a non-success response from the backend, carrying the decoded
// error envelope when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d", e.StatusCode)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the assistant backend. The HTTP client it is given is
// expected to attach the bearer credential (see oauth2.NewClient); Client
// itself never handles authentication.
type Client struct {
	baseURL      string
	client       *http.Client
	streamClient *http.Client
	logger       *slog.Logger
}

// NewClient creates a Client for the backend at baseURL. A nil httpClient
// falls back to defaults: a fixed request timeout for the non-incremental
// path, and no timeout for the streaming path, which is bounded only by the
// caller's context. http.Client.Timeout covers the entire body read, so a
// single default would sever any stream outliving it.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	client := httpClient
	streamClient := httpClient
	if httpClient == nil {
		client = &http.Client{Timeout: 60 * time.Second}
		streamClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      baseURL,
		client:       client,
		streamClient: streamClient,
		logger:       logger,
	}
}

// Complete sends a non-incremental chat request and returns the full reply.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (ChatReply, error) {
	req.Stream = false

	resp, err := c.post(ctx, c.client, req, "")
	if err != nil {
		return ChatReply{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ChatReply{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ChatReply{}, parseErrorEnvelope(resp.StatusCode, body)
	}

	var reply ChatReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return ChatReply{}, fmt.Errorf("unmarshal reply: %w", err)
	}
	return reply, nil
}

// Stream sends an incremental chat request and returns a single-pass
// sequence of deltas. An establishment failure (connection error or
// non-success status before any frame) is returned here, never as a
// mid-stream delta. The caller must call Close on the returned Stream.
func (c *Client) Stream(ctx context.Context, req ChatRequest) (*Stream, error) {
	req.Stream = true

	resp, err := c.post(ctx, c.streamClient, req, "text/event-stream")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		resp.Body.Close()
		return nil, parseErrorEnvelope(resp.StatusCode, body)
	}

	return &Stream{
		body:   resp.Body,
		dec:    sse.NewDecoder(resp.Body),
		logger: c.logger,
	}, nil
}

func (c *Client) post(ctx context.Context, client *http.Client, req ChatRequest, accept string) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if accept != "" {
		httpReq.Header.Set("Accept", accept)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// errorEnvelope is the backend's failure body. Detail is either a plain
// string or a structured validation error list, so it is decoded lazily.
type errorEnvelope struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

func parseErrorEnvelope(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apiErr
	}

	switch {
	case envelope.Error != "":
		apiErr.Message = envelope.Error
	case len(envelope.Detail) > 0:
		apiErr.Message = detailMessage(envelope.Detail)
	}
	return apiErr
}

func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return string(raw)
}
