package cost

import (
	"fmt"
)

// ModelCost represents the pricing structure for a language model.
// Costs are expressed in USD per million tokens.
//
// Example usage:
//
//	modelCost := cost.ModelCost{
//	    InputCostPerMillion:       2.50,
//	    OutputCostPerMillion:      10.00,
//	    CachedInputCostPerMillion: 1.25,
//	    ReasoningCostPerMillion:   5.00,
//	}
type ModelCost struct {
	// InputCostPerMillion is the cost in USD per 1 million input tokens
	InputCostPerMillion float64 `json:"input_cost_per_million"`

	// OutputCostPerMillion is the cost in USD per 1 million output tokens
	OutputCostPerMillion float64 `json:"output_cost_per_million"`

	// CachedInputCostPerMillion is the cost in USD per 1 million cached input tokens
	// Some providers offer discounted rates for cached tokens (optional)
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty"`

	// ReasoningCostPerMillion is the cost in USD per 1 million reasoning tokens
	// Used by models that perform chain-of-thought reasoning (optional)
	ReasoningCostPerMillion float64 `json:"reasoning_cost_per_million,omitempty"`
}

// CalculateInputCost calculates the cost for the given number of input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.InputCostPerMillion
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.OutputCostPerMillion
}

// CalculateCachedCost calculates the cost for the given number of cached tokens.
func (mc ModelCost) CalculateCachedCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.CachedInputCostPerMillion
}

// CalculateReasoningCost calculates the cost for the given number of reasoning tokens.
func (mc ModelCost) CalculateReasoningCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.ReasoningCostPerMillion
}

// CalculateTotalCost calculates the total cost for all token types.
func (mc ModelCost) CalculateTotalCost(inputTokens, outputTokens, cachedTokens, reasoningTokens int) float64 {
	total := mc.CalculateInputCost(inputTokens)
	total += mc.CalculateOutputCost(outputTokens)

	if mc.CachedInputCostPerMillion > 0 && cachedTokens > 0 {
		total += mc.CalculateCachedCost(cachedTokens)
	}

	if mc.ReasoningCostPerMillion > 0 && reasoningTokens > 0 {
		total += mc.CalculateReasoningCost(reasoningTokens)
	}

	return total
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}
