// Package mistral provides OCR over the Mistral document AI HTTP API.
// Image and PDF payloads are uploaded inline as base64 data URIs; the
// recognized pages come back as markdown and are joined into one text.
package mistral

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/infrastructure/resilience"
)

const defaultTimeout = 180 * time.Second

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func NewClient(baseURL, apiKey, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: defaultTimeout},
		executor:   executor,
	}
}

type ocrRequest struct {
	Model    string      `json:"model"`
	Document ocrDocument `json:"document"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	ImageURL    string `json:"image_url,omitempty"`
	DocumentURL string `json:"document_url,omitempty"`
}

type ocrResponse struct {
	Pages []struct {
		Markdown string `json:"markdown"`
	} `json:"pages"`
}

// Recognize runs OCR on raw file bytes. Images are sent as image_url
// documents, everything else as document_url.
func (c *Client) Recognize(ctx context.Context, data []byte, mimeType string) (string, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	doc := ocrDocument{Type: "document_url", DocumentURL: dataURI}
	if strings.HasPrefix(mimeType, "image/") {
		doc = ocrDocument{Type: "image_url", ImageURL: dataURI}
	}

	req := ocrRequest{Model: c.model, Document: doc}

	var resp ocrResponse
	var err error
	if c.executor == nil {
		err = c.postJSON(ctx, "/v1/ocr", req, &resp)
	} else {
		err = c.executor.Execute(ctx, "mistral_ocr", func(ctx context.Context) error {
			return c.postJSON(ctx, "/v1/ocr", req, &resp)
		}, classifyOCRError)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "mistral.Recognize", err)
	}

	pages := make([]string, 0, len(resp.Pages))
	for _, p := range resp.Pages {
		if strings.TrimSpace(p.Markdown) == "" {
			continue
		}
		pages = append(pages, p.Markdown)
	}
	return strings.Join(pages, "\n\n"), nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &HTTPStatusError{
			Operation:  path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       excerpt(raw),
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// HTTPStatusError reports a non-success response from the OCR API.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("mistral %s: unexpected status %s: %s", e.Operation, e.Status, e.Body)
}

func excerpt(raw []byte) string {
	const max = 2048
	if len(raw) > max {
		raw = raw[:max]
	}
	return string(raw)
}
