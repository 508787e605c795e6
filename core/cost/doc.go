// Package cost defines pricing structures and the token ledger used across
// the mago framework to track and bound the monetary cost of model inference.
//
// The main types are [ModelCost] for per-token LLM pricing (including cached
// and reasoning token rates) and [Ledger], an append-only record of token
// usage with an optional hard budget enforced through [Ledger.Authorize].
package cost
