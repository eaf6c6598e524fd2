package ai

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/audit-cli/internal/cost"
	"github.com/sells-group/audit-cli/pkg/anthropic"
	"github.com/sells-group/audit-cli/pkg/openai"
	"github.com/sells-group/audit-cli/pkg/perplexity"
)

type fakeAnthropic struct {
	lastReq anthropic.MessageRequest
	resp    *anthropic.MessageResponse
	err     error
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

type fakeOpenAI struct {
	lastReq openai.ChatCompletionRequest
	resp    *openai.ChatCompletionResponse
	err     error
}

func (f *fakeOpenAI) ChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

type fakePerplexity struct {
	lastReq perplexity.ChatCompletionRequest
	resp    *perplexity.ChatCompletionResponse
	err     error
}

func (f *fakePerplexity) ChatCompletion(_ context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func newTestGateway(ac anthropic.Client, oc openai.Client, pc perplexity.Client) (*Gateway, *cost.Ledger) {
	ledger := cost.NewLedger()
	g := New(ac, oc, pc, nil, cost.NewCalculator(cost.DefaultRates()), ledger)
	return g, ledger
}

func TestCallRoutesAnthropic(t *testing.T) {
	t.Parallel()

	ac := &fakeAnthropic{resp: &anthropic.MessageResponse{
		Text:       `{"ok":true}`,
		StopReason: "end_turn",
		Usage:      anthropic.TokenUsage{InputTokens: 1000, OutputTokens: 200},
	}}
	g, ledger := newTestGateway(ac, nil, nil)

	result, err := g.Call(context.Background(), CallRequest{
		Stage:  "extraction",
		Model:  "claude-sonnet-4-5-20250929",
		System: "You analyze websites.",
		Prompt: "Extract the profile.",
	})
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, result.Text)
	assert.Equal(t, int64(1000), result.InputTokens)
	assert.False(t, result.Truncated)
	// 1000 in at $3/mtok + 200 out at $15/mtok.
	assert.InDelta(t, 0.006, result.Cost, 1e-9)

	assert.Equal(t, "claude-sonnet-4-5-20250929", ac.lastReq.Model)
	assert.Equal(t, "You analyze websites.", ac.lastReq.System)
	assert.Equal(t, int64(4096), ac.lastReq.MaxTokens)

	entries := ledger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "extraction", entries[0].Stage)
	assert.InDelta(t, 0.006, entries[0].Cost, 1e-9)
}

func TestCallRoutesOpenAI(t *testing.T) {
	t.Parallel()

	oc := &fakeOpenAI{resp: &openai.ChatCompletionResponse{
		Choices: []openai.Choice{{
			Message:      openai.ChoiceMessage{Role: "assistant", Content: "fine"},
			FinishReason: "stop",
		}},
		Usage: openai.Usage{PromptTokens: 50, CompletionTokens: 10},
	}}
	g, _ := newTestGateway(nil, oc, nil)

	result, err := g.Call(context.Background(), CallRequest{
		Stage:  "critique_visual",
		Model:  "gpt-4o",
		System: "sys",
		Prompt: "user",
	})
	require.NoError(t, err)
	assert.Equal(t, "fine", result.Text)

	require.Len(t, oc.lastReq.Messages, 2)
	assert.Equal(t, "system", oc.lastReq.Messages[0].Role)
	assert.Equal(t, "user", oc.lastReq.Messages[1].Role)
}

func TestCallOpenAIVisionBuildsImagePart(t *testing.T) {
	t.Parallel()

	oc := &fakeOpenAI{resp: &openai.ChatCompletionResponse{
		Choices: []openai.Choice{{Message: openai.ChoiceMessage{Content: "ok"}}},
	}}
	g, _ := newTestGateway(nil, oc, nil)

	_, err := g.Call(context.Background(), CallRequest{
		Stage:    "critique_visual",
		Model:    "gpt-4o",
		Prompt:   "Describe this page.",
		ImageB64: "aGVsbG8=",
	})
	require.NoError(t, err)

	require.Len(t, oc.lastReq.Messages, 1)
	parts, ok := oc.lastReq.Messages[0].Content.([]openai.ContentPart)
	require.True(t, ok)
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", parts[1].ImageURL.URL)
}

func TestCallRoutesPerplexitySearch(t *testing.T) {
	t.Parallel()

	pc := &fakePerplexity{resp: &perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{
			Message:      perplexity.Message{Role: "assistant", Content: "competitors"},
			FinishReason: "stop",
		}},
		Usage:     perplexity.Usage{PromptTokens: 1_000_000, CompletionTokens: 0},
		Citations: []string{"https://rival.com"},
	}}
	g, ledger := newTestGateway(nil, nil, pc)

	result, err := g.Call(context.Background(), CallRequest{
		Stage:                "competitor_search",
		Model:                "sonar-pro",
		Prompt:               "Find competitors.",
		EnableSearch:         true,
		SearchExcludeDomains: []string{"acme.com"},
	})
	require.NoError(t, err)

	// Token cost plus the flat per-query search surcharge.
	assert.InDelta(t, 3.005, result.Cost, 1e-9)
	require.Len(t, ledger.Entries(), 1)
	assert.InDelta(t, 3.005, ledger.Entries()[0].Cost, 1e-9)

	// Exclusions reach the provider as "-domain" filters; citations come
	// back on the uniform result.
	assert.Equal(t, []string{"-acme.com"}, pc.lastReq.SearchDomainFilter)
	assert.Equal(t, []string{"https://rival.com"}, result.Citations)
}

func TestCallSearchRequiresPerplexityRoute(t *testing.T) {
	t.Parallel()

	g, ledger := newTestGateway(&fakeAnthropic{}, nil, nil)

	_, err := g.Call(context.Background(), CallRequest{
		Model:        "claude-sonnet-4-5-20250929",
		Prompt:       "x",
		EnableSearch: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support search")
	assert.Empty(t, ledger.Entries())
}

func TestCallUnknownModel(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(&fakeAnthropic{}, nil, nil)

	_, err := g.Call(context.Background(), CallRequest{Model: "gpt-9", Prompt: "x"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownModel))
}

func TestCallTruncatedResponse(t *testing.T) {
	t.Parallel()

	ac := &fakeAnthropic{resp: &anthropic.MessageResponse{
		Text:       "partial",
		StopReason: "max_tokens",
		Usage:      anthropic.TokenUsage{InputTokens: 10, OutputTokens: 4096},
	}}
	g, _ := newTestGateway(ac, nil, nil)

	result, err := g.Call(context.Background(), CallRequest{
		Model: "claude-haiku-4-5-20251001", Prompt: "x",
	})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, "partial", result.Text)
}

func TestCallProviderErrorPropagates(t *testing.T) {
	t.Parallel()

	ac := &fakeAnthropic{err: eris.New("anthropic: API error 429")}
	g, ledger := newTestGateway(ac, nil, nil)

	_, err := g.Call(context.Background(), CallRequest{
		Model: "claude-haiku-4-5-20251001", Prompt: "x",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	// Failed calls never land on the ledger.
	assert.Empty(t, ledger.Entries())
}

func TestCallMissingClient(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(nil, nil, nil)

	_, err := g.Call(context.Background(), CallRequest{
		Model: "claude-haiku-4-5-20251001", Prompt: "x",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic client not configured")
}

func TestCallPerplexityRejectsImages(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(nil, nil, &fakePerplexity{})

	_, err := g.Call(context.Background(), CallRequest{
		Model: "sonar-pro", Prompt: "x", ImageB64: "aGVsbG8=",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support images")
}
