package embedding

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// FunctionNameOpenAI is the registry name of the OpenAI-compatible provider.
const FunctionNameOpenAI = "openai"

// DefaultOpenAIModel is the embedding model used when the config names none.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIConfig holds the settings of the OpenAI-compatible provider. The
// API key is read from OPENAI_API_KEY when left empty; it is never written
// into collection metadata.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// Dimensions requests reduced-dimension vectors from models that
	// support it; 0 keeps the model's native dimension.
	Dimensions int
}

// OpenAIFunction computes embeddings through an OpenAI-compatible
// embeddings endpoint.
type OpenAIFunction struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAIFunction creates an OpenAI-compatible embedding function.
func NewOpenAIFunction(cfg OpenAIConfig) (*OpenAIFunction, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding: missing OpenAI API key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIFunction{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}, nil
}

// Generate computes one vector per input text through a single batch
// request.
func (f *OpenAIFunction) Generate(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrNoTexts
	}

	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          openai.EmbeddingModel(f.cfg.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if f.cfg.Dimensions > 0 {
		req.Dimensions = f.cfg.Dimensions
	}

	resp, err := f.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBatchMismatch, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Name implements Function.
func (f *OpenAIFunction) Name() string { return FunctionNameOpenAI }

// Dimension implements Function.
func (f *OpenAIFunction) Dimension() int { return f.cfg.Dimensions }

// Config implements Function. The API key is deliberately absent.
func (f *OpenAIFunction) Config() map[string]any {
	cfg := map[string]any{"model": f.cfg.Model}
	if f.cfg.BaseURL != "" {
		cfg["base_url"] = f.cfg.BaseURL
	}
	if f.cfg.Dimensions > 0 {
		cfg["dimensions"] = f.cfg.Dimensions
	}
	return cfg
}

func buildOpenAIFromConfig(config map[string]any) (Function, error) {
	cfg := OpenAIConfig{}
	if v, ok := config["model"].(string); ok {
		cfg.Model = v
	}
	if v, ok := config["base_url"].(string); ok {
		cfg.BaseURL = v
	}
	switch v := config["dimensions"].(type) {
	case int:
		cfg.Dimensions = v
	case float64:
		cfg.Dimensions = int(v)
	}
	return NewOpenAIFunction(cfg)
}

func init() {
	// Registration cannot fail on a fresh registry.
	_ = DefaultRegistry.Register(FunctionNameOpenAI, buildOpenAIFromConfig)
}
