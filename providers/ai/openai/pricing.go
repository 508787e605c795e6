package openai

import (
	"strings"

	"github.com/modal-agent/mago/core/cost"
)

// Model name constants for OpenAI models.
// Use these constants instead of raw strings for type safety and autocompletion.
const (
	// GPT-4o family
	ModelGPT4o     = "gpt-4o"
	ModelGPT4oMini = "gpt-4o-mini"

	// GPT-4.1 family
	ModelGPT41     = "gpt-4.1"
	ModelGPT41Mini = "gpt-4.1-mini"
	ModelGPT41Nano = "gpt-4.1-nano"

	// GPT-5 family
	ModelGPT5     = "gpt-5"
	ModelGPT5Mini = "gpt-5-mini"
	ModelGPT5Nano = "gpt-5-nano"

	// Reasoning models
	ModelO3     = "o3"
	ModelO3Mini = "o3-mini"
	ModelO4Mini = "o4-mini"
)

// DefaultModelName is the model used when neither the request nor the
// connector configuration names one.
const DefaultModelName = ModelGPT4o

// ModelPricing contains pricing information for all supported OpenAI models.
// Prices are in USD per million tokens.
// Source: https://platform.openai.com/docs/pricing (2025)
var ModelPricing = map[string]cost.ModelCost{
	// GPT-4o
	// Input: $2.50/M, Output: $10.00/M, Cached: $1.25/M
	ModelGPT4o: {
		InputCostPerMillion:       2.50,
		OutputCostPerMillion:      10.00,
		CachedInputCostPerMillion: 1.25,
	},
	ModelGPT4oMini: {
		InputCostPerMillion:       0.15,
		OutputCostPerMillion:      0.60,
		CachedInputCostPerMillion: 0.075,
	},

	// GPT-4.1
	ModelGPT41: {
		InputCostPerMillion:       2.00,
		OutputCostPerMillion:      8.00,
		CachedInputCostPerMillion: 0.50,
	},
	ModelGPT41Mini: {
		InputCostPerMillion:       0.40,
		OutputCostPerMillion:      1.60,
		CachedInputCostPerMillion: 0.10,
	},
	ModelGPT41Nano: {
		InputCostPerMillion:       0.10,
		OutputCostPerMillion:      0.40,
		CachedInputCostPerMillion: 0.025,
	},

	// GPT-5
	ModelGPT5: {
		InputCostPerMillion:       1.25,
		OutputCostPerMillion:      10.00,
		CachedInputCostPerMillion: 0.125,
		ReasoningCostPerMillion:   10.00, // Same as output
	},
	ModelGPT5Mini: {
		InputCostPerMillion:       0.25,
		OutputCostPerMillion:      2.00,
		CachedInputCostPerMillion: 0.025,
		ReasoningCostPerMillion:   2.00,
	},
	ModelGPT5Nano: {
		InputCostPerMillion:       0.05,
		OutputCostPerMillion:      0.40,
		CachedInputCostPerMillion: 0.005,
		ReasoningCostPerMillion:   0.40,
	},

	// Reasoning models
	ModelO3: {
		InputCostPerMillion:       2.00,
		OutputCostPerMillion:      8.00,
		CachedInputCostPerMillion: 0.50,
		ReasoningCostPerMillion:   8.00,
	},
	ModelO3Mini: {
		InputCostPerMillion:       1.10,
		OutputCostPerMillion:      4.40,
		CachedInputCostPerMillion: 0.55,
		ReasoningCostPerMillion:   4.40,
	},
	ModelO4Mini: {
		InputCostPerMillion:       1.10,
		OutputCostPerMillion:      4.40,
		CachedInputCostPerMillion: 0.275,
		ReasoningCostPerMillion:   4.40,
	},
}

// GetModelCost returns the cost configuration for a given model name.
// It handles dated snapshot names (e.g. "gpt-4o-2024-08-06" matches "gpt-4o").
// Unknown models fall back to the default model's pricing.
func GetModelCost(model string) cost.ModelCost {
	if mc, ok := ModelPricing[model]; ok {
		return mc
	}

	if mc, ok := ModelPricing[normalizeModelName(model)]; ok {
		return mc
	}

	return ModelPricing[DefaultModelName]
}

// normalizeModelName strips dated snapshot suffixes so pricing lookups match
// the base model name. Example: "gpt-4o-mini-2024-07-18" -> "gpt-4o-mini".
func normalizeModelName(model string) string {
	parts := strings.Split(model, "-")
	// Snapshot names end with a date: <base>-YYYY-MM-DD
	if len(parts) >= 4 {
		tail := parts[len(parts)-3:]
		if len(tail[0]) == 4 && len(tail[1]) == 2 && len(tail[2]) == 2 {
			return strings.Join(parts[:len(parts)-3], "-")
		}
	}
	return model
}
