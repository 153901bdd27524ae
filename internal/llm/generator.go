package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tabular-rag/internal/contextutil"
)

// GeneratorClient is a client for a remote text-generation endpoint
// (Ollama-style generate API, non-streaming).
type GeneratorClient struct {
	BaseURL string
	Model   string
	client  *http.Client
}

// NewGeneratorClient creates a new generation client.
func NewGeneratorClient(baseURL, model string) *GeneratorClient {
	return &GeneratorClient{
		BaseURL: baseURL,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// GenerateRequest represents the request payload for the generation API.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse represents the response from the generation API.
type GenerateResponse struct {
	Response string `json:"response"`
}

// Generate produces an answer to query grounded in the given context
// snippets. It builds a single prompt, makes one non-streaming call, and
// returns the model output verbatim. Any transport or remote failure is
// converted into a human-readable degraded answer rather than an error: the
// caller always gets text back.
func (c *GeneratorClient) Generate(ctx context.Context, query string, snippets []string) string {
	logger := contextutil.LoggerFromContext(ctx)

	prompt := buildPrompt(query, snippets)

	payload := GenerateRequest{
		Model:  c.Model,
		Prompt: prompt,
		Stream: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorContext(ctx, "failed to marshal generation request", "error", err)
		return fmt.Sprintf("Generation error: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewBuffer(body))
	if err != nil {
		logger.ErrorContext(ctx, "failed to create generation request", "error", err)
		return fmt.Sprintf("Generation error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.ErrorContext(ctx, "generation call failed", "error", err)
		return fmt.Sprintf("Generation error: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		logger.ErrorContext(ctx, "generation returned bad status", "status", resp.StatusCode)
		return fmt.Sprintf("Generation error: bad status %d: %s", resp.StatusCode, string(raw))
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		logger.ErrorContext(ctx, "failed to decode generation response", "error", err)
		return fmt.Sprintf("Generation error: %v", err)
	}

	return genResp.Response
}

// buildPrompt embeds the query and all context snippets into a single prompt.
func buildPrompt(query string, snippets []string) string {
	var b bytes.Buffer
	b.WriteString("You are an AI assistant. Answer the user question using ONLY the context below.\n\n")
	b.WriteString("Question:\n")
	b.WriteString(query)
	b.WriteString("\n\nContext:\n")
	for i, s := range snippets {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s)
	}
	b.WriteString("\n\nGive a concise, factual answer.\n")
	return b.String()
}
