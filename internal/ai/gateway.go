// Package ai provides the provider gateway: one call surface over the
// Anthropic, OpenAI-compatible and Perplexity backends, with per-call cost
// accounting. The gateway never retries; retry policy is a batch concern.
package ai

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/cost"
	"github.com/sells-group/audit-cli/pkg/anthropic"
	"github.com/sells-group/audit-cli/pkg/openai"
	"github.com/sells-group/audit-cli/pkg/perplexity"
)

// Provider identifies one of the supported backends.
type Provider string

const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderPerplexity Provider = "perplexity"
)

// ErrUnknownModel is returned when a model id has no route. This is a
// gateway configuration error, not a transient failure.
var ErrUnknownModel = eris.New("ai: unknown model id")

// DefaultRoutes maps known model ids to their provider. Providers are a
// closed set selected by lookup, never by response-shape inspection.
func DefaultRoutes() map[string]Provider {
	return map[string]Provider{
		"claude-haiku-4-5-20251001":  ProviderAnthropic,
		"claude-sonnet-4-5-20250929": ProviderAnthropic,
		"gpt-4o":                     ProviderOpenAI,
		"gpt-4o-mini":                ProviderOpenAI,
		"sonar-pro":                  ProviderPerplexity,
	}
}

// CallRequest is one model call.
type CallRequest struct {
	Stage  string // ledger attribution, e.g. "extraction", "critique_visual"
	Model  string
	System string
	Prompt string
	// ImageB64 attaches one base64-encoded image for vision calls.
	ImageB64       string
	ImageMediaType string
	// EnableSearch requests a search-augmented call; only Perplexity-routed
	// models support it.
	EnableSearch bool
	// SearchExcludeDomains drops the named domains from search results.
	SearchExcludeDomains []string
	MaxTokens            int64
	Temperature          *float64
}

// CallResult is the uniform response shape. Citations is populated only
// on search-augmented calls.
type CallResult struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
	Truncated    bool
	Citations    []string
	Cost         float64
	Duration     time.Duration
}

// Gateway dispatches calls to the provider owning each model id and
// records every call in the run ledger.
type Gateway struct {
	anthropic  anthropic.Client
	openai     openai.Client
	perplexity perplexity.Client
	routes     map[string]Provider
	calc       *cost.Calculator
	ledger     *cost.Ledger
}

// New creates a Gateway. Any client may be nil if no model routes to it.
func New(ac anthropic.Client, oc openai.Client, pc perplexity.Client, routes map[string]Provider, calc *cost.Calculator, ledger *cost.Ledger) *Gateway {
	if routes == nil {
		routes = DefaultRoutes()
	}
	return &Gateway{
		anthropic:  ac,
		openai:     oc,
		perplexity: pc,
		routes:     routes,
		calc:       calc,
		ledger:     ledger,
	}
}

// Call dispatches one model call. Transport and API errors propagate
// unchanged. Truncated responses are detected and logged, never dropped.
func (g *Gateway) Call(ctx context.Context, req CallRequest) (*CallResult, error) {
	provider, ok := g.routes[req.Model]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownModel, "ai: no route for %q", req.Model)
	}
	if req.EnableSearch && provider != ProviderPerplexity {
		return nil, eris.Errorf("ai: model %q does not support search", req.Model)
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = 4096
	}

	start := time.Now()
	var result *CallResult
	var err error

	switch provider {
	case ProviderAnthropic:
		result, err = g.callAnthropic(ctx, req)
	case ProviderOpenAI:
		result, err = g.callOpenAI(ctx, req)
	case ProviderPerplexity:
		result, err = g.callPerplexity(ctx, req)
	default:
		return nil, eris.Wrapf(ErrUnknownModel, "ai: unhandled provider %q", provider)
	}
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	result.Cost = g.calc.ModelCall(req.Model, result.InputTokens, result.OutputTokens)
	if req.EnableSearch {
		result.Cost += g.calc.PerplexityQuery()
	}

	if result.Truncated {
		zap.L().Warn("ai: response truncated by length limit",
			zap.String("stage", req.Stage),
			zap.String("model", req.Model),
			zap.Int64("max_tokens", req.MaxTokens),
		)
	}

	if g.ledger != nil {
		g.ledger.Append(cost.Entry{
			Stage:        req.Stage,
			Model:        req.Model,
			InputTokens:  result.InputTokens,
			OutputTokens: result.OutputTokens,
			Cost:         result.Cost,
			Duration:     result.Duration,
		})
	}

	return result, nil
}

func (g *Gateway) callAnthropic(ctx context.Context, req CallRequest) (*CallResult, error) {
	if g.anthropic == nil {
		return nil, eris.New("ai: anthropic client not configured")
	}
	resp, err := g.anthropic.CreateMessage(ctx, anthropic.MessageRequest{
		Model:          req.Model,
		MaxTokens:      req.MaxTokens,
		System:         req.System,
		Prompt:         req.Prompt,
		ImageB64:       req.ImageB64,
		ImageMediaType: req.ImageMediaType,
		Temperature:    req.Temperature,
	})
	if err != nil {
		return nil, err
	}
	return &CallResult{
		Text:         resp.Text,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Truncated:    resp.StopReason == "max_tokens",
	}, nil
}

func (g *Gateway) callOpenAI(ctx context.Context, req CallRequest) (*CallResult, error) {
	if g.openai == nil {
		return nil, eris.New("ai: openai client not configured")
	}

	messages := []openai.Message{}
	if req.System != "" {
		messages = append(messages, openai.Message{Role: "system", Content: req.System})
	}
	if req.ImageB64 != "" {
		mediaType := req.ImageMediaType
		if mediaType == "" {
			mediaType = "image/png"
		}
		messages = append(messages, openai.Message{
			Role: "user",
			Content: []openai.ContentPart{
				{Type: "text", Text: req.Prompt},
				{Type: "image_url", ImageURL: &openai.ImageURL{URL: "data:" + mediaType + ";base64," + req.ImageB64}},
			},
		})
	} else {
		messages = append(messages, openai.Message{Role: "user", Content: req.Prompt})
	}

	maxTokens := int(req.MaxTokens)
	resp, err := g.openai.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   &maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("ai: openai returned no choices")
	}
	choice := resp.Choices[0]
	return &CallResult{
		Text:         choice.Message.Content,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
		Truncated:    choice.FinishReason == "length",
	}, nil
}

func (g *Gateway) callPerplexity(ctx context.Context, req CallRequest) (*CallResult, error) {
	if g.perplexity == nil {
		return nil, eris.New("ai: perplexity client not configured")
	}
	if req.ImageB64 != "" {
		return nil, eris.Errorf("ai: model %q does not support images", req.Model)
	}

	messages := []perplexity.Message{}
	if req.System != "" {
		messages = append(messages, perplexity.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, perplexity.Message{Role: "user", Content: req.Prompt})

	var domainFilter []string
	for _, d := range req.SearchExcludeDomains {
		domainFilter = append(domainFilter, "-"+d)
	}

	maxTokens := int(req.MaxTokens)
	resp, err := g.perplexity.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model:              req.Model,
		Messages:           messages,
		MaxTokens:          &maxTokens,
		Temperature:        req.Temperature,
		SearchDomainFilter: domainFilter,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("ai: perplexity returned no choices")
	}
	choice := resp.Choices[0]
	return &CallResult{
		Text:         choice.Message.Content,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
		Truncated:    choice.FinishReason == "length",
		Citations:    resp.Citations,
	}, nil
}
