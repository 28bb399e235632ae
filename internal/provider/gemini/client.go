package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

type Request struct {
	Model          string
	System         string
	Contents       []Content
	Schema         *Schema
	GoogleSearch   bool
	ThinkingBudget int
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Schema is the subset of the OpenAPI schema object accepted as responseSchema.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

type Response struct {
	Text          string
	GroundingURLs []string
	FinishReason  string
}

func TextContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

func ImagePart(data []byte, mimeType string) Part {
	return Part{InlineData: &InlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}}
}

type generateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Tools             []map[string]any  `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema         `json:"responseSchema,omitempty"`
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

func (c *Client) GenerateContent(ctx context.Context, in Request) (Response, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return Response{}, fmt.Errorf("missing Gemini API key")
	}
	if strings.TrimSpace(in.Model) == "" {
		return Response{}, fmt.Errorf("gemini model is required")
	}
	if len(in.Contents) == 0 {
		return Response{}, fmt.Errorf("gemini request has no contents")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	payload, err := json.Marshal(buildRequest(in))
	if err != nil {
		return Response{}, fmt.Errorf("marshal Gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, url.PathEscape(in.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("create Gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("execute Gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Response{}, fmt.Errorf("read Gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Response{}, fmt.Errorf("gemini request failed with status %d: %s", resp.StatusCode, msg)
	}
	return parseResponse(body)
}

func buildRequest(in Request) generateRequest {
	out := generateRequest{Contents: in.Contents}
	if strings.TrimSpace(in.System) != "" {
		out.SystemInstruction = &Content{Parts: []Part{{Text: in.System}}}
	}
	if in.GoogleSearch {
		out.Tools = []map[string]any{{"googleSearch": map[string]any{}}}
	}
	if in.Schema != nil || in.ThinkingBudget > 0 {
		cfg := &generationConfig{}
		if in.Schema != nil {
			cfg.ResponseMimeType = "application/json"
			cfg.ResponseSchema = in.Schema
		}
		if in.ThinkingBudget > 0 {
			cfg.ThinkingConfig = &thinkingConfig{ThinkingBudget: in.ThinkingBudget}
		}
		out.GenerationConfig = cfg
	}
	return out
}

func parseResponse(body []byte) (Response, error) {
	if !gjson.ValidBytes(body) {
		return Response{}, fmt.Errorf("decode Gemini response: invalid JSON")
	}
	candidate := gjson.GetBytes(body, "candidates.0")
	if !candidate.Exists() {
		if reason := gjson.GetBytes(body, "promptFeedback.blockReason").String(); reason != "" {
			return Response{}, fmt.Errorf("gemini blocked the prompt: %s", reason)
		}
		return Response{}, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range candidate.Get("content.parts").Array() {
		if part.Get("thought").Bool() {
			continue
		}
		sb.WriteString(part.Get("text").String())
	}
	out := Response{
		Text:         strings.TrimSpace(sb.String()),
		FinishReason: candidate.Get("finishReason").String(),
	}
	if out.Text == "" {
		return Response{}, fmt.Errorf("gemini returned an empty response (finish reason %q)", out.FinishReason)
	}

	seen := map[string]bool{}
	for _, uri := range candidate.Get("groundingMetadata.groundingChunks.#.web.uri").Array() {
		u := strings.TrimSpace(uri.String())
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out.GroundingURLs = append(out.GroundingURLs, u)
	}
	return out, nil
}
