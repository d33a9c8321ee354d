package synth

import "strings"

// modelPricing is USD per million tokens, {input, output}.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

var pricingTable = map[string]modelPricing{
	"opus":   {InputPerMillion: 15, OutputPerMillion: 75},
	"sonnet": {InputPerMillion: 3, OutputPerMillion: 15},
	"haiku":  {InputPerMillion: 0.25, OutputPerMillion: 1.25},
}

// pricingFor resolves a model id (e.g. "claude-opus-4" or "opus") to its
// per-million-token pricing by substring match against the known tiers,
// defaulting to sonnet pricing for an unrecognized id.
func pricingFor(model string) modelPricing {
	lower := strings.ToLower(model)
	for tier, price := range pricingTable {
		if strings.Contains(lower, tier) {
			return price
		}
	}
	return pricingTable["sonnet"]
}

// estimateCost returns the USD cost of inputTokens/outputTokens at model's
// pricing.
func estimateCost(model string, inputTokens, outputTokens int64) float64 {
	p := pricingFor(model)
	return float64(inputTokens)/1_000_000*p.InputPerMillion + float64(outputTokens)/1_000_000*p.OutputPerMillion
}

// estimateDryRunTokens implements spec.md §4.13's dry-run estimate:
// input = total_chars/4 + 500, output = min(input/2, 4000).
func estimateDryRunTokens(totalChars int) (input, output int64) {
	input = int64(totalChars)/4 + 500
	output = input / 2
	if output > 4000 {
		output = 4000
	}
	return input, output
}
