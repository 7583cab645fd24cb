// Package caption asks a vision model for a short scene description that can
// be used as the prompt when the padded border is outpainted.
package caption

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ollama/ollama/api"
)

// DefaultPrompt asks for a description that extends naturally past the frame
const DefaultPrompt = `Describe this image as a prompt for extending it beyond its borders.
Mention the setting, lighting, colors and style. Do not describe the frame or borders.
Answer with one sentence of at most 40 words. No markdown, no quotes.`

// Describer produces an outpaint prompt for an image
type Describer interface {
	Describe(ctx context.Context, img image.Image) (string, error)
}

// Config holds the vision model settings
type Config struct {
	URL     string
	Model   string
	Prompt  string
	MaxSide int
	Quality int
	Timeout time.Duration
}

// DefaultConfig returns settings for a local Ollama server
func DefaultConfig() Config {
	return Config{
		URL:     "http://localhost:11434",
		Model:   "openbmb/minicpm-v4.5",
		Prompt:  DefaultPrompt,
		MaxSide: 1024,
		Quality: 85,
		Timeout: 300 * time.Second,
	}
}

// Client wraps the Ollama API client
type Client struct {
	client *api.Client
	config Config
}

// NewClient creates a new Ollama-backed describer
func NewClient(config Config) (*Client, error) {
	parsedURL, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", config.URL)
	}
	if config.Prompt == "" {
		config.Prompt = DefaultPrompt
	}

	// Drop any path such as /api/chat; the SDK adds its own.
	baseURL := &url.URL{Scheme: parsedURL.Scheme, Host: parsedURL.Host}
	return &Client{
		client: api.NewClient(baseURL, http.DefaultClient),
		config: config,
	}, nil
}

// Describe returns a one-sentence prompt for img
func (c *Client) Describe(ctx context.Context, img image.Image) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	imgBytes, err := PrepareImage(img, c.config.MaxSide, c.config.Quality)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: c.config.Model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: c.config.Prompt,
				Images:  []api.ImageData{api.ImageData(imgBytes)},
			},
		},
		Stream: &streamFalse,
	}

	var content strings.Builder
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}

	prompt := Sanitize(content.String())
	if prompt == "" {
		return "", fmt.Errorf("empty response from ollama")
	}
	return prompt, nil
}

// PrepareImage downsizes img so its long side is at most maxSide and encodes
// it as JPEG. maxSide 0 keeps the original size.
func PrepareImage(img image.Image, maxSide, quality int) ([]byte, error) {
	if maxSide > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxSide || h > maxSide {
			if w >= h {
				img = imaging.Resize(img, maxSide, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxSide, imaging.Lanczos)
			}
		}
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Sanitize strips code fences, surrounding quotes and line breaks from a
// model answer.
func Sanitize(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`\"'")
	return strings.Join(strings.Fields(raw), " ")
}
