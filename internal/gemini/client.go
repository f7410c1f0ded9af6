package gemini

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
	"regexp"
	"strings"

	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/provider"
)

const (
	defaultTextModel  = "gemini-2.5-flash"
	defaultImageModel = "gemini-2.5-flash-image"
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ provider.Service = (*Client)(nil)

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
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
		apiVersion: apiVersion,
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

	parts := []part{{Text: req.Prompt}}
	for _, u := range req.ImageDataURLs {
		if inline, ok := dataURLToInlineData(u, "image/jpeg"); ok {
			parts = append(parts, part{InlineData: &inline})
		}
	}

	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:     0.8,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		payload.SystemInstruction = &content{Role: "user", Parts: []part{{Text: req.System}}}
	}
	if req.JSON {
		payload.GenerationConfig.ResponseMimeType = "application/json"
	}

	resp, err := c.generateContent(ctx, c.textModel, payload)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", provider.ErrEmptyResponse
	}
	return text, nil
}

// Synthesize conditions the image model on the reference image when one
// is given. The diffusion controls have no API counterpart here and are
// folded into the prompt as guidance.
func (c *Client) Synthesize(ctx context.Context, req provider.ImageRequest) ([]byte, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: imageParts(prompt, req)}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig:        &imageConfig{AspectRatio: aspectRatio(req.Size)},
		},
	}

	resp, err := c.generateContent(ctx, c.imageModel, payload)
	if err != nil && isUnknownFieldError(err, "imageConfig") {
		payload.GenerationConfig.ImageConfig = nil
		resp, err = c.generateContent(ctx, c.imageModel, payload)
	}
	if err != nil {
		return nil, err
	}

	if len(resp.Images) == 0 {
		c.logger.WarnContext(ctx, "image model returned no image, retrying", "text", truncate(resp.Text, 200))
		payload.Contents = []content{{Role: "user", Parts: imageParts(prompt+"\n\nReturn the result only as an image (inlineData). Do not answer with text.", req)}}
		resp, err = c.generateContent(ctx, c.imageModel, payload)
		if err != nil {
			return nil, err
		}
		if len(resp.Images) == 0 {
			return nil, provider.ErrEmptyResponse
		}
	}

	data, err := base64.StdEncoding.DecodeString(resp.Images[0].Data)
	if err != nil {
		return nil, fmt.Errorf("decode inline image: %w", err)
	}
	return data, nil
}

func imageParts(prompt string, req provider.ImageRequest) []part {
	var b strings.Builder
	b.WriteString(prompt)
	if req.StyleStrength > 0 || req.DetailLevel > 0 {
		fmt.Fprintf(&b, "\n\nRendering guidance: prompt adherence %.1f on a 5-20 scale, detail level %d on a 20-50 scale.", req.StyleStrength, req.DetailLevel)
	}
	if req.Deviation > 0 {
		fmt.Fprintf(&b, " Allowed deviation from the reference composition: %.0f%%.", req.Deviation*100)
	}

	parts := []part{{Text: b.String()}}
	if inline, ok := dataURLToInlineData(req.ReferenceDataURL, "image/jpeg"); ok {
		parts = append(parts, part{Text: "Reference image (main character and style):"}, part{InlineData: &inline})
	}
	return parts
}

func aspectRatio(size string) string {
	w, h, ok := strings.Cut(size, "x")
	if !ok || w == h {
		return "1:1"
	}
	return w + ":" + h
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (reply, error) {
	if c.httpClient == nil {
		return reply{}, errors.New("http client is nil")
	}
	if c.apiKey == "" {
		return reply{}, errors.New("GEMINI_API_KEY is not set")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return reply{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return reply{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return reply{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return reply{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return reply{}, fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return reply{}, fmt.Errorf("decode response: %w", err)
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return reply{}, fmt.Errorf("gemini blocked prompt: %s", decoded.PromptFeedback.BlockReason)
	}

	return extractParts(decoded), nil
}

func extractParts(resp generateContentResponse) reply {
	if len(resp.Candidates) == 0 {
		return reply{}
	}

	var out reply
	var textBuilder strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" && p.InlineData.MimeType != "" {
			out.Images = append(out.Images, *p.InlineData)
		}
	}
	out.Text = textBuilder.String()
	return out
}

var dataURLRegex = regexp.MustCompile(`^data:([^;]+);base64,`)

func dataURLToInlineData(dataURL string, fallbackMime string) (blob, bool) {
	dataURL = strings.TrimSpace(dataURL)
	if dataURL == "" {
		return blob{}, false
	}

	mime := fallbackMime
	if matches := dataURLRegex.FindStringSubmatch(dataURL); len(matches) == 2 {
		mime = matches[1]
	}

	data := stripDataURLPrefix(dataURL)
	if data == "" {
		return blob{}, false
	}

	return blob{
		Data:     data,
		MimeType: mime,
	}, true
}

func stripDataURLPrefix(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
