package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// MissingReplyText is displayed when a generative-content response carries no text.
const MissingReplyText = "An error occurred"

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.0-flash"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiBackend calls the generateContent endpoint directly.
type GeminiBackend struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewGemini builds a backend. Empty baseURL or model fall back to defaults.
func NewGemini(baseURL, model, apiKey string, client *http.Client) *GeminiBackend {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  client,
	}
}

// Name implements Backend.
func (b *GeminiBackend) Name() string {
	return "gemini"
}

// Endpoint returns the request URL including the key query parameter.
func (b *GeminiBackend) Endpoint() string {
	q := url.Values{}
	q.Set("key", b.apiKey)
	return b.baseURL + "/v1beta/models/" + url.PathEscape(b.model) + ":generateContent?" + q.Encode()
}

// Send implements Backend.
func (b *GeminiBackend) Send(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: text}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "encode generateContent request")
	}

	body, err := postJSON(ctx, b.client, b.Endpoint(), payload)
	if err != nil {
		return "", err
	}

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", errors.Wrap(err, "decode generateContent response")
	}

	return firstCandidateText(decoded), nil
}

func firstCandidateText(resp geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return MissingReplyText
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == nil {
		return MissingReplyText
	}
	return *content.Parts[0].Text
}
