package cost

import (
	"testing"
)

func TestModelCostCalculations(t *testing.T) {
	mc := ModelCost{
		InputCostPerMillion:  2.50,
		OutputCostPerMillion: 10.00,
	}

	inputCost := mc.CalculateInputCost(1_000_000)
	if inputCost != 2.50 {
		t.Errorf("Expected input cost 2.50, got %f", inputCost)
	}

	outputCost := mc.CalculateOutputCost(500_000)
	if outputCost != 5.00 {
		t.Errorf("Expected output cost 5.00, got %f", outputCost)
	}

	total := mc.CalculateTotalCost(1_000_000, 500_000, 0, 0)
	if total != 7.50 {
		t.Errorf("Expected total cost 7.50, got %f", total)
	}
}

func TestModelCostWithCachedTokens(t *testing.T) {
	mc := ModelCost{
		InputCostPerMillion:       2.50,
		OutputCostPerMillion:      10.00,
		CachedInputCostPerMillion: 1.25,
	}

	total := mc.CalculateTotalCost(1_000_000, 0, 1_000_000, 0)
	if total != 3.75 {
		t.Errorf("Expected total cost 3.75, got %f", total)
	}
}

func TestModelCostWithReasoningTokens(t *testing.T) {
	mc := ModelCost{
		InputCostPerMillion:     1.00,
		OutputCostPerMillion:    4.00,
		ReasoningCostPerMillion: 4.00,
	}

	total := mc.CalculateTotalCost(0, 250_000, 0, 250_000)
	if total != 2.00 {
		t.Errorf("Expected total cost 2.00, got %f", total)
	}
}

func TestModelCostZeroTokens(t *testing.T) {
	mc := ModelCost{
		InputCostPerMillion:  2.50,
		OutputCostPerMillion: 10.00,
	}

	if total := mc.CalculateTotalCost(0, 0, 0, 0); total != 0 {
		t.Errorf("Expected zero cost for zero tokens, got %f", total)
	}
}

func TestModelCostString(t *testing.T) {
	mc := ModelCost{
		InputCostPerMillion:  2.50,
		OutputCostPerMillion: 10.00,
	}

	str := mc.String()
	if str == "" {
		t.Error("Expected non-empty string representation")
	}
}
