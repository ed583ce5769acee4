package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"taxoclass/internal/classify"
	"taxoclass/internal/mediaingest"
	"taxoclass/internal/services"
)

const (
	defaultTimeout            = 300 * time.Second
	defaultTranscriptionModel = "gemini-2.5-flash"
	jsonMIMEType              = "application/json"
)

// TranscriptionPrompt asks for a faithful transcript with slide annotations.
const TranscriptionPrompt = `Transcribe this recording completely and faithfully, in its original language.
Do not summarize, translate or omit passages.
When slides, diagrams or on-screen text are visible, insert a bracketed description where they appear, for example [Diapositiva: objetivos del taller].
Return only the transcript.`

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey             string
	TimeoutSeconds     int
	TranscriptionModel string
	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string
}

// Client wraps the genai SDK.
type Client struct {
	cfg    Config
	client *genai.Client
}

// Option customizes the client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// New constructs a Gemini client. A missing API key is a configuration error
// reported before any network call.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "new client", "api key is not set (gemini.api_key or GEMINI_API_KEY)", nil)
	}
	if strings.TrimSpace(cfg.TranscriptionModel) == "" {
		cfg.TranscriptionModel = defaultTranscriptionModel
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	options := clientOptions{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(&options)
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: options.httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "new client", "initialize sdk", err)
	}
	return &Client{cfg: cfg, client: client}, nil
}

// Generate sends one classification prompt and returns the raw response text.
func (c *Client) Generate(ctx context.Context, req classify.GenerateRequest) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt.Content)}
	if att := req.Prompt.Attachment; att != nil {
		parts = append(parts, genai.NewPartFromBytes(att.Data, att.MIMEType))
	}
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(req.Temperature),
		MaxOutputTokens:   int32(req.MaxOutputTokens),
		ResponseMIMEType:  jsonMIMEType,
		SystemInstruction: genai.NewContentFromText(req.Prompt.Instructions, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return "", classifyError("generate", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", services.Wrap(services.ErrExternalTool, "gemini", "generate", "empty response (finish_reason="+finishReason(resp)+")", nil)
	}
	return text, nil
}

// HealthCheck verifies the API key and that model exists, without generating.
func (c *Client) HealthCheck(ctx context.Context, model string) error {
	if _, err := c.client.Models.Get(ctx, model, nil); err != nil {
		return classifyError("get model", err)
	}
	return nil
}

// Upload sends media bytes to the Files API.
func (c *Client) Upload(ctx context.Context, data []byte, mimeType, displayName string) (mediaingest.Asset, error) {
	file, err := c.client.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return mediaingest.Asset{}, classifyError("upload", err)
	}
	return assetFromFile(file, mimeType), nil
}

// State reports the processing state of an uploaded file.
func (c *Client) State(ctx context.Context, name string) (mediaingest.State, error) {
	file, err := c.client.Files.Get(ctx, name, nil)
	if err != nil {
		return mediaingest.StateProcessing, classifyError("get file", err)
	}
	return mapState(file.State), nil
}

// Transcribe asks the transcription model for a full transcript of an active file.
func (c *Client) Transcribe(ctx context.Context, uri, mimeType string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromURI(uri, mimeType),
		genai.NewPartFromText(TranscriptionPrompt),
	}, genai.RoleUser)}
	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.TranscriptionModel, contents, config)
	if err != nil {
		return "", classifyError("transcribe", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// Release deletes an uploaded file.
func (c *Client) Release(ctx context.Context, name string) error {
	if _, err := c.client.Files.Delete(ctx, name, nil); err != nil {
		return classifyError("delete file", err)
	}
	return nil
}

func assetFromFile(file *genai.File, fallbackMIME string) mediaingest.Asset {
	if file == nil {
		return mediaingest.Asset{MIMEType: fallbackMIME, State: mediaingest.StateUploading}
	}
	mime := file.MIMEType
	if mime == "" {
		mime = fallbackMIME
	}
	return mediaingest.Asset{
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: mime,
		State:    mapState(file.State),
	}
}

func mapState(state genai.FileState) mediaingest.State {
	switch state {
	case genai.FileStateActive:
		return mediaingest.StateActive
	case genai.FileStateFailed:
		return mediaingest.StateFailed
	case genai.FileStateProcessing:
		return mediaingest.StateProcessing
	default:
		return mediaingest.StateUploading
	}
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "none"
	}
	return string(resp.Candidates[0].FinishReason)
}

func classifyError(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "gemini", operation, "request abandoned", err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		message := fmt.Sprintf("http %d %s", apiErr.Code, strings.TrimSpace(apiErr.Message))
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, "gemini", operation, message, err)
		case apiErr.Code == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "gemini", operation, message, err)
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError:
			return services.Wrap(services.ErrTransient, "gemini", operation, message, err)
		}
	}
	return services.Wrap(services.ErrExternalTool, "gemini", operation, "request failed", err)
}

var (
	_ classify.Backend     = (*Client)(nil)
	_ mediaingest.Backend  = (*Client)(nil)
	_ mediaingest.Releaser = (*Client)(nil)
)
