package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// EmbeddingsClient is a client for a remote embedding endpoint (Ollama-style
// embed API).
type EmbeddingsClient struct {
	BaseURL   string
	Model     string
	Dimension int // Expected vector size; validated on every response
	client    *http.Client
}

// NewEmbeddingsClient creates a new embeddings client. dimension is the
// expected vector size; every returned vector is validated against it.
func NewEmbeddingsClient(baseURL, model string, dimension int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:   baseURL,
		Model:     model,
		Dimension: dimension,
		client:    http.DefaultClient,
	}
}

// EmbedRequest represents the request payload for the embedding API.
type EmbedRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions"`
}

// embedResponseShape covers the object-shaped responses observed from
// embedding providers. Which field is populated depends on the provider
// version; extractVector decides once per response.
type embedResponseShape struct {
	Embeddings [][]float64 `json:"embeddings"`
	Embedding  []float64   `json:"embedding"`
	Data       []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// extractVector normalizes the known response shapes to a single flat vector:
// a list-of-lists field, a single-vector field, a nested list-of-objects
// field, or a bare list of objects. Anything else is a hard error, never a
// silent zero vector.
func extractVector(raw []byte) ([]float64, error) {
	var obj embedResponseShape
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case len(obj.Embeddings) > 0:
			return obj.Embeddings[0], nil
		case len(obj.Embedding) > 0:
			return obj.Embedding, nil
		case len(obj.Data) > 0 && len(obj.Data[0].Embedding) > 0:
			return obj.Data[0].Embedding, nil
		}
	}

	var list []struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 && len(list[0].Embedding) > 0 {
		return list[0].Embedding, nil
	}

	preview := raw
	if len(preview) > 200 {
		preview = preview[:200]
	}
	return nil, fmt.Errorf("unrecognized embedding response shape: %s", preview)
}

// Embed generates an embedding for a single text. Each call is one remote
// round trip with no retry; transport and malformed-response failures
// propagate to the caller.
func (c *EmbeddingsClient) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := EmbedRequest{
		Model:      c.Model,
		Input:      text,
		Dimensions: c.Dimension,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	vec, err := extractVector(raw)
	if err != nil {
		return nil, err
	}

	if c.Dimension > 0 && len(vec) != c.Dimension {
		return nil, fmt.Errorf("embedding has size %d, expected %d", len(vec), c.Dimension)
	}

	result := make([]float32, len(vec))
	for i, v := range vec {
		result[i] = float32(v)
	}
	return result, nil
}

// EmbedBatch generates embeddings for a sequence of texts, order- and
// length-preserving. The provider is called once per input text; an empty
// input returns an empty result without any remote call.
func (c *EmbeddingsClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	result := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		result = append(result, vec)
	}
	return result, nil
}
