package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Models     map[string]ModelRate `yaml:"models" mapstructure:"models"`
	Jina       JinaRate             `yaml:"jina" mapstructure:"jina"`
	Perplexity PerplexityRate       `yaml:"perplexity" mapstructure:"perplexity"`
}

// ModelRate holds per-model token pricing (USD per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// JinaRate holds Jina Reader pricing.
type JinaRate struct {
	PerMTok float64 `yaml:"per_mtok" mapstructure:"per_mtok"`
}

// PerplexityRate holds Perplexity pricing.
type PerplexityRate struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// ModelCall computes the cost of one model call. Unknown models cost 0.
func (c *Calculator) ModelCall(model string, input, output int64) float64 {
	rate, ok := c.rates.Models[model]
	if !ok {
		return 0
	}
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}

// Jina computes the cost for Jina Reader token usage.
func (c *Calculator) Jina(tokens int) float64 {
	return (float64(tokens) / 1e6) * c.rates.Jina.PerMTok
}

// PerplexityQuery returns the flat search surcharge per Perplexity query.
func (c *Calculator) PerplexityQuery() float64 {
	return c.rates.Perplexity.PerQuery
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Models: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
			"gpt-4o":                     {Input: 2.50, Output: 10.00},
			"gpt-4o-mini":                {Input: 0.15, Output: 0.60},
			"sonar-pro":                  {Input: 3.00, Output: 15.00},
		},
		Jina:       JinaRate{PerMTok: 0.02},
		Perplexity: PerplexityRate{PerQuery: 0.005},
	}
}
