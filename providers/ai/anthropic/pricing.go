package anthropic

import (
	"strings"

	"github.com/modal-agent/mago/core/cost"
)

// Model name constants for Anthropic models.
// Use these constants instead of raw strings for type safety and autocompletion.
const (
	// Claude 4 family
	ModelOpus4   = "claude-opus-4-0"
	ModelSonnet4 = "claude-sonnet-4-0"

	// Claude 3.7 / 3.5 family
	ModelSonnet37 = "claude-3-7-sonnet-latest"
	ModelSonnet35 = "claude-3-5-sonnet-latest"
	ModelHaiku35  = "claude-3-5-haiku-latest"

	// Claude 3 family (legacy)
	ModelOpus3  = "claude-3-opus-latest"
	ModelHaiku3 = "claude-3-haiku-20240307"
)

// DefaultModelName is the model used when neither the request nor the
// connector configuration names one.
const DefaultModelName = ModelSonnet4

// ModelPricing contains pricing information for all supported Anthropic models.
// Prices are in USD per million tokens.
// Source: https://www.anthropic.com/pricing (2025)
//
// Cached input pricing uses the cache-read rate (90% discount); cache writes
// are billed at a premium not modelled here.
var ModelPricing = map[string]cost.ModelCost{
	ModelOpus4: {
		InputCostPerMillion:       15.00,
		OutputCostPerMillion:      75.00,
		CachedInputCostPerMillion: 1.50,
	},
	ModelSonnet4: {
		InputCostPerMillion:       3.00,
		OutputCostPerMillion:      15.00,
		CachedInputCostPerMillion: 0.30,
	},
	ModelSonnet37: {
		InputCostPerMillion:       3.00,
		OutputCostPerMillion:      15.00,
		CachedInputCostPerMillion: 0.30,
	},
	ModelSonnet35: {
		InputCostPerMillion:       3.00,
		OutputCostPerMillion:      15.00,
		CachedInputCostPerMillion: 0.30,
	},
	ModelHaiku35: {
		InputCostPerMillion:       0.80,
		OutputCostPerMillion:      4.00,
		CachedInputCostPerMillion: 0.08,
	},
	ModelOpus3: {
		InputCostPerMillion:       15.00,
		OutputCostPerMillion:      75.00,
		CachedInputCostPerMillion: 1.50,
	},
	ModelHaiku3: {
		InputCostPerMillion:       0.25,
		OutputCostPerMillion:      1.25,
		CachedInputCostPerMillion: 0.03,
	},
}

// GetModelCost returns the cost configuration for a given model name.
// Dated snapshots and aliases resolve to their model family (e.g.
// "claude-sonnet-4-20250514" matches the Sonnet 4 entry). Unknown models fall
// back to the default model's pricing.
func GetModelCost(model string) cost.ModelCost {
	if mc, ok := ModelPricing[model]; ok {
		return mc
	}

	// Family prefix match for dated snapshots and -latest aliases.
	for name, mc := range ModelPricing {
		if familyPrefix(name) != "" && strings.HasPrefix(model, familyPrefix(name)) {
			return mc
		}
	}

	return ModelPricing[DefaultModelName]
}

// familyPrefix strips version-pinning suffixes from a pricing key so snapshot
// names can match by prefix.
func familyPrefix(name string) string {
	for _, suffix := range []string{"-latest", "-0", "-20240307"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
