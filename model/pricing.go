package model

import (
	"github.com/shopspring/decimal"
	ai "github.com/spetersoncode/agentry"
)

var million = decimal.NewFromInt(1_000_000)

// ChatPricing contains pricing per million tokens (USD) for chat models.
type ChatPricing struct {
	InputPerMillion  decimal.Decimal
	OutputPerMillion decimal.Decimal
}

// perMillion builds pricing from the USD-per-million rates published by providers.
func perMillion(input, output string) ChatPricing {
	return ChatPricing{
		InputPerMillion:  decimal.RequireFromString(input),
		OutputPerMillion: decimal.RequireFromString(output),
	}
}

// IsZero returns true for models without known pricing.
func (p ChatPricing) IsZero() bool {
	return p.InputPerMillion.IsZero() && p.OutputPerMillion.IsZero()
}

// CalculateCost returns the USD cost of the usage under the given pricing.
func CalculateCost(usage ai.Usage, pricing ChatPricing) decimal.Decimal {
	input := decimal.NewFromInt(int64(usage.InputTokens)).Mul(pricing.InputPerMillion).Div(million)
	output := decimal.NewFromInt(int64(usage.OutputTokens)).Mul(pricing.OutputPerMillion).Div(million)
	return input.Add(output)
}
