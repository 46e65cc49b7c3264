// Package model provides the chat model catalog for the supported providers.
//
// Models know their provider, which lets the client route requests, and
// their per-million-token pricing, which lets runs report a cost:
//
//	m, err := model.Parse("anthropic:claude-sonnet-4-5")
//	cost := m.Cost(res.Usage) // decimal.Decimal, USD
//
// Pricing uses shopspring/decimal so accumulated costs do not drift.
package model
