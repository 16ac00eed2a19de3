package menuimport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// OCRSpaceClient sends PDF documents to the OCR.space parse endpoint.
type OCRSpaceClient struct {
	url      string
	apiKey   string
	language string
	client   *http.Client
}

func NewOCRSpaceClient(url, apiKey, language string) *OCRSpaceClient {
	return &OCRSpaceClient{
		url:      url,
		apiKey:   apiKey,
		language: language,
		client:   &http.Client{Timeout: 90 * time.Second},
	}
}

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
	// Sağlayıcı bazen string, bazen string dizisi döndürüyor
	ErrorMessage json.RawMessage `json:"ErrorMessage"`
}

func (c *OCRSpaceClient) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "menu.pdf")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(pdf); err != nil {
		return "", err
	}
	fields := map[string]string{
		"language":  c.language,
		"isTable":   "true",
		"OCREngine": "1",
		"filetype":  "PDF",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return "", fmt.Errorf("HTTP isteği oluşturulamadı: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP isteği başarısız: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("yanıt okunamadı: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP hatası: %d", resp.StatusCode)
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("yanıt çözümlenemedi: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("işleme hatası: %s", string(parsed.ErrorMessage))
	}

	texts := make([]string, 0, len(parsed.ParsedResults))
	for _, r := range parsed.ParsedResults {
		texts = append(texts, r.ParsedText)
	}
	return strings.Join(texts, " "), nil
}
