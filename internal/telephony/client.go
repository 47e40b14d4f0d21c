package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ionutpopescu27/ByteMeHackaton/internal/http/handlers"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

// BackendClient calls the assistant backend over HTTP.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewBackendClient creates a client for the backend at baseURL.
func NewBackendClient(baseURL string, timeout time.Duration, logger *logging.Logger) *BackendClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BackendClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type backendReply struct {
	Text string `json:"text"`
}

// Answer forwards a general question to POST /rsp.
func (c *BackendClient) Answer(ctx context.Context, callSid, text string) (string, error) {
	var reply backendReply
	err := c.post(ctx, "/rsp", callSid, map[string]any{"text": text}, &reply)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// AnswerWithDocs forwards a question to POST /rsp_db against a document
// collection.
func (c *BackendClient) AnswerWithDocs(ctx context.Context, callSid, text, collection string, k int) (string, error) {
	var reply backendReply
	err := c.post(ctx, "/rsp_db", callSid, map[string]any{
		"text":            text,
		"collection_name": collection,
		"k":               k,
	}, &reply)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// StopCall notifies the backend that the call ended so its conversation can
// be closed and labeled.
func (c *BackendClient) StopCall(ctx context.Context, callSid, callerNumber string) error {
	return c.post(ctx, "/stop_call", callSid, map[string]any{"text": callerNumber}, nil)
}

func (c *BackendClient) post(ctx context.Context, path, callSid string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telephony: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telephony: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if callSid != "" {
		req.Header.Set(handlers.CallIDHeader, callSid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telephony: backend %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telephony: backend %s returned %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("telephony: decode backend reply: %w", err)
	}
	return nil
}
