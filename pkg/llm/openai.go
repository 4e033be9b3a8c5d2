package llm

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/matzehuels/diagramsmith/pkg/errors"
	"github.com/matzehuels/diagramsmith/pkg/httputil"
	"github.com/matzehuels/diagramsmith/pkg/observability"
)

// Default model names. Both default to the same multimodal model; callers
// can split text and vision across different models via ClientOptions.
const (
	DefaultTextModel   = openai.GPT4o
	DefaultVisionModel = openai.GPT4o
)

// ErrAPIKeyMissing indicates no API key was found in the environment.
var ErrAPIKeyMissing = errors.New(errors.ErrCodeModelUnavailable, "OpenAI API key not found in environment variable OPENAI_API_KEY")

// ClientOptions configures the OpenAI-backed model client.
type ClientOptions struct {
	// APIKey authenticates requests. Falls back to $OPENAI_API_KEY.
	APIKey string

	// BaseURL overrides the API endpoint (for proxies or compatible servers).
	BaseURL string

	// TextModel and VisionModel name the models to use.
	TextModel   string
	VisionModel string

	// Timeout bounds each API call. Defaults to 120s.
	Timeout time.Duration
}

// Client implements TextModel and VisionModel on the OpenAI chat API.
//
// Transient failures (429, 5xx) are retried here with backoff; this is the
// collaborator layer the pipeline delegates retry policy to. A failure that
// survives the retries is the call's definitive outcome.
type Client struct {
	api         *openai.Client
	textModel   string
	visionModel string
}

// NewClient creates an OpenAI-backed client.
func NewClient(opts ClientOptions) (*Client, error) {
	key := opts.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, ErrAPIKeyMissing
	}

	cfg := openai.DefaultConfig(key)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	textModel := opts.TextModel
	if textModel == "" {
		textModel = DefaultTextModel
	}
	visionModel := opts.VisionModel
	if visionModel == "" {
		visionModel = DefaultVisionModel
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		textModel:   textModel,
		visionModel: visionModel,
	}, nil
}

// Generate implements TextModel.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.textModel,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	return c.complete(ctx, "text", 0, req)
}

// GenerateVision implements VisionModel. Image parts are inlined as
// base64 data URLs; several images may ride in one call.
func (c *Client) GenerateVision(ctx context.Context, systemPrompt string, parts []Part, maxTokens int) (string, error) {
	content := make([]openai.ChatMessagePart, 0, len(parts))
	images := 0
	for _, p := range parts {
		if p.Image != nil {
			images++
			content = append(content, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(p.Image),
					Detail: openai.ImageURLDetailAuto,
				},
			})
			continue
		}
		content = append(content, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: p.Text,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:     c.visionModel,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: content},
		},
	}
	return c.complete(ctx, "vision", images, req)
}

// complete issues the chat request with retry on transient API errors.
func (c *Client) complete(ctx context.Context, kind string, images int, req openai.ChatCompletionRequest) (string, error) {
	var text string
	start := time.Now()

	err := httputil.RetryWithBackoff(ctx, func() error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			if isTransient(err) {
				return httputil.Retryable(err)
			}
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return fmt.Errorf("model returned empty response")
		}
		text = resp.Choices[0].Message.Content
		return nil
	})

	observability.Model().OnModelCall(ctx, kind, images, time.Since(start), err)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeModelUnavailable, err, "%s model call", kind)
	}
	return text, nil
}

// isTransient classifies API errors worth retrying: rate limits and
// server-side failures. Everything else (auth, bad request, context
// cancellation) fails immediately.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	return false
}
