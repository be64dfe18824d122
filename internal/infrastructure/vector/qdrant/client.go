// Package qdrant implements the vector index port over the Qdrant HTTP API.
//
// Qdrant point ids must be UUIDs or integers, so the client derives a
// deterministic UUIDv5 from the chunk id and keeps the original chunk and
// document ids in the payload. Re-upserting the same chunk id overwrites
// the same point.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

var pointNamespace = uuid.MustParse("8e0bfa2e-5d7c-4f91-9b3a-6cd24c1f0d42")

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Upsert(ctx context.Context, records []domain.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := c.ensureCollection(ctx, len(records[0].Vector)); err != nil {
		return domain.WrapError(domain.ErrVectorIndex, "qdrant.Upsert", err)
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(records))
	for _, rec := range records {
		points = append(points, point{
			ID:     uuid.NewSHA1(pointNamespace, []byte(rec.ID)).String(),
			Vector: rec.Vector,
			Payload: map[string]any{
				"chunk_id":      rec.ID,
				"doc_id":        rec.DocumentID,
				"original_name": rec.OriginalName,
				"chunk_index":   rec.SequenceIndex,
				"text":          rec.Text,
			},
		})
	}

	reqBody := map[string]any{"points": points}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return domain.WrapError(domain.ErrVectorIndex, "qdrant.Upsert", fmt.Errorf("marshal upsert body: %w", err))
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPut, url, body, nil); err != nil {
		return domain.WrapError(domain.ErrVectorIndex, "qdrant.Upsert", err)
	}
	return nil
}

func (c *Client) Query(
	ctx context.Context,
	vector []float32,
	topK int,
	filter domain.ScopeFilter,
) ([]domain.RetrievedFragment, error) {
	if len(filter.DocumentIDs) == 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key": "doc_id",
					"match": map[string]any{
						"any": filter.DocumentIDs,
					},
				},
			},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, domain.WrapError(domain.ErrVectorIndex, "qdrant.Query", fmt.Errorf("marshal search body: %w", err))
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, body, &searchResp); err != nil {
		return nil, domain.WrapError(domain.ErrVectorIndex, "qdrant.Query", err)
	}

	out := make([]domain.RetrievedFragment, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.RetrievedFragment{
			DocumentID:   getStringPayload(r.Payload, "doc_id"),
			OriginalName: getStringPayload(r.Payload, "original_name"),
			Text:         getStringPayload(r.Payload, "text"),
			Score:        r.Score,
		})
	}
	return out, nil
}

func (c *Client) DeleteByDocument(ctx context.Context, documentID string) error {
	reqBody := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key": "doc_id",
					"match": map[string]any{
						"value": documentID,
					},
				},
			},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return domain.WrapError(domain.ErrVectorIndex, "qdrant.DeleteByDocument", fmt.Errorf("marshal delete body: %w", err))
	}

	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, body, nil); err != nil {
		return domain.WrapError(domain.ErrVectorIndex, "qdrant.DeleteByDocument", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return fmt.Errorf("qdrant status: %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("qdrant status: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal create collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create collection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant ensure collection request: %w", err)
	}
	defer resp.Body.Close()

	// 200/201 for create, 409 if it already exists.
	if resp.StatusCode == http.StatusConflict {
		c.markCollectionEnsured(vectorSize)
		return nil
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return fmt.Errorf("qdrant ensure collection status: %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("qdrant ensure collection status: %s", resp.Status)
	}
	c.markCollectionEnsured(vectorSize)
	return nil
}

func (c *Client) markCollectionEnsured(vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
