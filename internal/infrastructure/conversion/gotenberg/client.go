// Package gotenberg converts legacy office documents to PDF through a
// Gotenberg LibreOffice route. Conversion is a best-effort pre-step for
// extraction; a failed conversion fails the file it belongs to.
package gotenberg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

const defaultTimeout = 120 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// ConvertToPDF uploads the document to the LibreOffice route and returns
// the converted PDF bytes.
func (c *Client) ConvertToPDF(ctx context.Context, data []byte, filename string) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "gotenberg.ConvertToPDF", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "gotenberg.ConvertToPDF", err)
	}
	if err := writer.Close(); err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "gotenberg.ConvertToPDF", err)
	}

	url := c.baseURL + "/forms/libreoffice/convert"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "gotenberg.ConvertToPDF", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "gotenberg.ConvertToPDF", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, domain.WrapError(domain.ErrExtraction, "gotenberg.ConvertToPDF",
			fmt.Errorf("unexpected status %s: %s", resp.Status, string(raw)))
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "gotenberg.ConvertToPDF", err)
	}
	if len(pdf) == 0 {
		return nil, domain.WrapError(domain.ErrExtraction, "gotenberg.ConvertToPDF",
			fmt.Errorf("empty conversion result for %q", filename))
	}
	return pdf, nil
}
