package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"finance-ledger/internal/secrets"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the part of the genai client the provider uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type generatorFactory func(ctx context.Context, apiKey string) (contentGenerator, error)

// GeminiProvider asks Gemini for suggestions. The API key is read from the
// credential store on every call so a key stored at runtime takes effect
// without a restart.
type GeminiProvider struct {
	credentials secrets.Store
	model       string
	timeout     time.Duration
	logger      *slog.Logger
	newClient   generatorFactory

	mu       sync.Mutex
	client   contentGenerator
	clientOf string
}

func NewGeminiProvider(credentials secrets.Store, model string, timeout time.Duration, logger *slog.Logger) *GeminiProvider {
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiProvider{
		credentials: credentials,
		model:       model,
		timeout:     timeout,
		logger:      logger,
		newClient:   newGenaiClient,
	}
}

func newGenaiClient(ctx context.Context, apiKey string) (contentGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) SuggestCategory(ctx context.Context, req Request) ([]Suggestion, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrEmptyRequest
	}

	client, err := p.generator(ctx)
	if err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	temperature := float32(0.2)
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildPrompt(req)}},
		},
	}

	start := time.Now()
	resp, err := client.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	p.logger.DebugContext(ctx, "gemini suggestion received",
		slog.String("model", p.model),
		slog.Duration("duration", time.Since(start)))

	return ParseSuggestions(resp.Text())
}

func (p *GeminiProvider) generator(ctx context.Context) (contentGenerator, error) {
	apiKey, err := p.credentials.Get(ctx, secrets.CredentialGeminiAPIKey)
	if errors.Is(err, secrets.ErrNotFound) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini credential: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil && p.clientOf == apiKey {
		return p.client, nil
	}

	client, err := p.newClient(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	p.client = client
	p.clientOf = apiKey
	return client, nil
}
