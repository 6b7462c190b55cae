package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"studio/internal/infra"
)

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultImageModel = "gemini-3-pro-image-preview"
	DefaultChatModel  = "gemini-2.5-flash"
	DefaultMimeType   = "image/png"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	ChatModel  string
	// MinInterval spaces consecutive requests. Zero disables pacing.
	MinInterval time.Duration
	HTTPClient  *http.Client
	Logger      *infra.Logger
}

// Client is a thin REST facade over generateContent. It does not retry;
// callers wrap it with the retry policy.
type Client struct {
	apiKey     string
	baseURL    string
	imageModel string
	chatModel  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *infra.Logger
}

// InlineImage is a base64 image part.
type InlineImage struct {
	MimeType string
	Data     string
}

// DataURI renders the image as a data: URI, defaulting the mime type.
func (i InlineImage) DataURI() string {
	mime := i.MimeType
	if mime == "" {
		mime = DefaultMimeType
	}
	return "data:" + mime + ";base64," + i.Data
}

// ImageRequest is an image generation or edit call: inline images first,
// then one text part.
type ImageRequest struct {
	Images      []InlineImage
	Text        string
	AspectRatio string
	ImageSize   string
}

// ChatRequest is a text-only call with a system instruction.
type ChatRequest struct {
	System string
	Images []InlineImage
	Text   string
}

// Result is the reassembled first candidate. Image is nil when the model
// answered with text only.
type Result struct {
	Image *InlineImage
	Text  string
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Code    int
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini status %d (%s): %s", e.Code, e.Status, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("gemini status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gemini status %d", e.Code)
}

// StatusCode exposes the HTTP status for retry classification.
func (e *APIError) StatusCode() int {
	return e.Code
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	chatModel := opts.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		imageModel: imageModel,
		chatModel:  chatModel,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}, nil
}

// ImageModel returns the model used for image calls.
func (c *Client) ImageModel() string {
	return c.imageModel
}

// GenerateImage issues one image call. Both generation and editing use it;
// they differ only in the parts supplied.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (Result, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: buildParts(req.Images, req.Text)}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig: &geminiImageConfig{
				AspectRatio: req.AspectRatio,
				ImageSize:   req.ImageSize,
			},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.imageModel, payload, &response); err != nil {
		return Result{}, err
	}
	result := reassemble(response)

	c.logger.Debug().
		Str("model", c.imageModel).
		Int("images_in", len(req.Images)).
		Bool("image_out", result.Image != nil).
		Msg("genai: image call completed")

	return result, nil
}

// Chat issues one text call against the chat model.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: buildParts(req.Images, req.Text)}},
	}
	if system := strings.TrimSpace(req.System); system != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.chatModel, payload, &response); err != nil {
		return "", err
	}
	return reassemble(response).Text, nil
}

func buildParts(images []InlineImage, text string) []geminiPart {
	parts := make([]geminiPart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: img.MimeType, Data: img.Data}})
	}
	return append(parts, geminiPart{Text: text})
}

func reassemble(resp geminiGenerateContentResponse) Result {
	var result Result
	if len(resp.Candidates) == 0 {
		return result
	}
	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		switch {
		case part.InlineData != nil && part.InlineData.Data != "":
			if result.Image == nil {
				result.Image = &InlineImage{MimeType: firstNonEmpty(part.InlineData.MimeType, DefaultMimeType), Data: part.InlineData.Data}
			}
		case strings.TrimSpace(part.Text) != "":
			texts = append(texts, strings.TrimSpace(part.Text))
		}
	}
	result.Text = strings.Join(texts, "\n")
	return result
}

func (c *Client) invokeGemini(ctx context.Context, model string, payload any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Code: resp.StatusCode}
		var decoded geminiErrorResponse
		if err := json.Unmarshal(data, &decoded); err == nil && decoded.Error.Message != "" {
			apiErr.Message = decoded.Error.Message
			apiErr.Status = decoded.Error.Status
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("model", model).
			Msg("genai: request rejected")
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
