package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"cartoon-story-bot/internal/httpclient"
	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/provider"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultTextModel  = "gpt-4o"
	defaultImageModel = "dall-e-3"
)

type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ provider.Service = (*Client)(nil)

func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = defaultTextModel
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = defaultImageModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
}

func (c *Client) Complete(ctx context.Context, req provider.TextRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("prompt is empty")
	}

	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}

	if len(req.ImageDataURLs) == 0 {
		messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})
	} else {
		parts := []contentPart{{Type: "text", Text: req.Prompt}}
		for _, u := range req.ImageDataURLs {
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: u}})
		}
		messages = append(messages, chatMessage{Role: "user", Content: parts})
	}

	payload := chatRequest{
		Model:     c.textModel,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.JSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", provider.ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", provider.ErrEmptyResponse
	}
	if resp.Choices[0].FinishReason == "length" {
		c.logger.WarnContext(ctx, "completion truncated by token budget", "model", c.textModel, "max_tokens", req.MaxTokens)
	}
	return text, nil
}

// Synthesize requests one image and fetches it from the returned URL.
// Reference images and the diffusion controls are not part of the
// images API and are dropped.
func (c *Client) Synthesize(ctx context.Context, req provider.ImageRequest) ([]byte, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	size := req.Size
	if size == "" {
		size = provider.SizeSquare
	}
	quality := req.Quality
	if quality == "" {
		quality = provider.QualityStandard
	}

	payload := imageGenerationRequest{
		Model:   c.imageModel,
		Prompt:  prompt,
		N:       1,
		Size:    size,
		Quality: quality,
	}

	var resp imageGenerationResponse
	if err := c.post(ctx, "/images/generations", payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, provider.ErrEmptyResponse
	}

	item := resp.Data[0]
	if item.RevisedPrompt != "" {
		c.logger.DebugContext(ctx, "image prompt revised", "revised_prompt", item.RevisedPrompt)
	}

	switch {
	case item.URL != "":
		d, err := httpclient.Download(ctx, c.httpClient, item.URL, 0)
		if err != nil {
			return nil, fmt.Errorf("fetch generated image: %w", err)
		}
		return d.Bytes, nil
	case item.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("decode base64 image: %w", err)
		}
		return data, nil
	default:
		return nil, provider.ErrEmptyResponse
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	if c.httpClient == nil {
		return errors.New("http client is nil")
	}
	if c.apiKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return fmt.Errorf("openai API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
