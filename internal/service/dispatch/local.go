package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// ChatRequest is the body of the local /chat contract.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the success body of the local /chat contract.
type ChatResponse struct {
	Message string `json:"message"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API call failed with status: %d", e.StatusCode)
}

// LocalBackend posts to a /chat endpoint.
type LocalBackend struct {
	endpoint string
	client   *http.Client
}

// NewLocal targets endpoint, e.g. http://localhost:8080/chat.
func NewLocal(endpoint string, client *http.Client) *LocalBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &LocalBackend{endpoint: endpoint, client: client}
}

// Name implements Backend.
func (b *LocalBackend) Name() string {
	return "local"
}

// Send implements Backend. A 2xx JSON body without a string "message" field
// yields an empty reply rather than an error.
func (b *LocalBackend) Send(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(ChatRequest{Message: text})
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}

	body, err := postJSON(ctx, b.client, b.endpoint, payload)
	if err != nil {
		return "", err
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", errors.Wrap(err, "decode chat response")
	}

	return replyField(decoded), nil
}

func replyField(decoded any) string {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return ""
	}

	switch v := obj["message"].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func postJSON(ctx context.Context, client *http.Client, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	return body, nil
}
