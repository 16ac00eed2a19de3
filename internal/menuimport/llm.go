package menuimport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const extractionPrompt = `You extract restaurant menus from OCR text taken from a PDF.
Answer with ONLY one valid JSON object, no markdown, no explanation, with exactly this shape:
{"menu":{"categories":[{"name":"Category","subCategories":[{"name":"Sub-category or null","products":[{"designation":"Short product name","price":12.5}]}],"products":[{"designation":"Product directly in the category","price":10.0}]}]}}
Rules:
- Every category name appears once; merge repeated sections into one category.
- Only use subCategories when the menu shows explicit sub-sections; otherwise put the products in the category's products and leave subCategories empty.
- Product designations are unique across the menu and kept short: keep the main dish, drop long marketing phrases.
- price is a JSON number with a dot as decimal separator.
- Keep names in the language of the menu.
- Double quotes for keys and strings, no trailing commas.
Menu text:
`

// PerplexityClient asks an OpenAI-compatible chat completions endpoint
// (Perplexity by default) to structure menu text.
type PerplexityClient struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

func NewPerplexityClient(url, apiKey, model string) *PerplexityClient {
	return &PerplexityClient{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *PerplexityClient) ParseMenu(ctx context.Context, text string) (*Menu, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: extractionPrompt + text}},
		MaxTokens:   2500,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("HTTP isteği oluşturulamadı: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP isteği başarısız: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yanıt okunamadı: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP hatası: %d %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("yanıt çözümlenemedi: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("yanıtta seçenek yok")
	}
	return decodeMenu(parsed.Choices[0].Message.Content)
}

// decodeMenu parses the model answer, tolerating markdown fences around the JSON.
func decodeMenu(content string) (*Menu, error) {
	var envelope struct {
		Menu *Menu `json:"menu"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &envelope); err != nil {
		return nil, fmt.Errorf("menü JSON geçersiz: %w", err)
	}
	if envelope.Menu == nil {
		return nil, fmt.Errorf("menü JSON'unda \"menu\" alanı yok")
	}
	return envelope.Menu, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
