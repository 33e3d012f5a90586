package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"
)

const (
	geminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultEmbedModel = "embedding-001"
	defaultChatModel  = "gemini-2.0-flash-exp"
	embedBatchLimit   = 100 // Gemini batchEmbedContents cap per request
	embedTimeout      = 60 * time.Second
	generateTimeout   = 120 * time.Second
)

// GeminiClient implements both Embedder and Generator against the Google
// Generative Language API.
type GeminiClient struct {
	apiKey     string
	embedModel string
	chatModel  string
	httpClient *http.Client
}

// NewGeminiClient fails with ErrMissingAPIKey when no credential is
// configured, before any request is attempted.
func NewGeminiClient() (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	embedModel := os.Getenv("GEMINI_EMBEDDING_MODEL")
	if embedModel == "" {
		embedModel = defaultEmbedModel
	}
	chatModel := os.Getenv("GEMINI_CHAT_MODEL")
	if chatModel == "" {
		chatModel = defaultChatModel
	}

	return &GeminiClient{
		apiKey:     apiKey,
		embedModel: embedModel,
		chatModel:  chatModel,
		httpClient: http.DefaultClient,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type embedContentRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type embedValues struct {
	Values []float64 `json:"values"`
}

type embedContentResponse struct {
	Embedding embedValues `json:"embedding"`
}

type batchEmbedResponse struct {
	Embeddings []embedValues `json:"embeddings"`
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	req := embedContentRequest{
		Model:   "models/" + c.embedModel,
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}

	url := fmt.Sprintf("%s/%s:embedContent", geminiBaseURL, c.embedModel)
	body, err := c.post(ctx, url, req, embedTimeout)
	if err != nil {
		return nil, err
	}

	var resp embedContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding response: %w", err)
	}

	return toFloat32(normalize64(resp.Embedding.Values)), nil
}

// EmbedBatch embeds texts in request-sized groups, preserving input order.
func (c *GeminiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += embedBatchLimit {
		end := start + embedBatchLimit
		if end > len(texts) {
			end = len(texts)
		}

		req := batchEmbedRequest{}
		for _, text := range texts[start:end] {
			req.Requests = append(req.Requests, embedContentRequest{
				Model:   "models/" + c.embedModel,
				Content: geminiContent{Parts: []geminiPart{{Text: text}}},
			})
		}

		url := fmt.Sprintf("%s/%s:batchEmbedContents", geminiBaseURL, c.embedModel)
		body, err := c.post(ctx, url, req, embedTimeout)
		if err != nil {
			return nil, err
		}

		var resp batchEmbedResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal batch embedding response: %w", err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", end-start, len(resp.Embeddings))
		}

		for _, e := range resp.Embeddings {
			vectors = append(vectors, toFloat32(normalize64(e.Values)))
		}
	}

	return vectors, nil
}

type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() {
		fmt.Printf("[GEMINI] answer took %v\n", time.Since(start))
	}()

	req := generateRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}

	url := fmt.Sprintf("%s/%s:generateContent", geminiBaseURL, c.chatModel)
	body, err := c.post(ctx, url, req, generateTimeout)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generate response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (c *GeminiClient) post(ctx context.Context, url string, payload any, timeout time.Duration) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return respBody, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))
	default:
		return nil, fmt.Errorf("gemini API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}

// normalize64 scales the vector to unit length so cosine distance in the
// index behaves the same regardless of the embedding model's output scale.
func normalize64(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	for i, x := range vec {
		vec[i] = x / norm
	}
	return vec
}
