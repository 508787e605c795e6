package cost

import (
	"fmt"
	"sync"
	"time"
)

// TokenCount holds the per-call token counters recorded in a ledger entry.
// It mirrors provider usage reports without depending on any provider package.
type TokenCount struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	CachedTokens     int `json:"cached_tokens,omitempty"`
	ReasoningTokens  int `json:"reasoning_tokens,omitempty"`
}

// Total returns the sum of prompt and completion tokens.
func (tc TokenCount) Total() int {
	return tc.PromptTokens + tc.CompletionTokens
}

// Entry is a single append-only ledger record for one provider call.
type Entry struct {
	Model  string     `json:"model"`
	Tokens TokenCount `json:"tokens"`
	Cost   float64    `json:"cost"`
	At     time.Time  `json:"at"`
}

// NoTokensAvailableError is returned by Authorize when the ledger's running
// total has reached or exceeded a configured budget. Budget/Used carry the
// token limit; CostBudget/CostUsed carry the dollar limit. Whichever limit
// tripped is non-zero in its budget field.
type NoTokensAvailableError struct {
	Budget     int
	Used       int
	CostBudget float64
	CostUsed   float64
}

func (e *NoTokensAvailableError) Error() string {
	if e.CostBudget > 0 {
		return fmt.Sprintf("cost budget exhausted: spent $%.6f of $%.6f", e.CostUsed, e.CostBudget)
	}
	return fmt.Sprintf("token budget exhausted: used %d of %d", e.Used, e.Budget)
}

// Ledger accumulates token usage and dollar cost across provider calls.
// Entries are append-only; the zero budget means unlimited. A Ledger is safe
// for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	entries    []Entry
	budget     int     // total token budget; 0 = unlimited
	costBudget float64 // total dollar budget; 0 = unlimited

	totalTokens int
	totalCost   float64
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithBudget sets a hard token budget. Once the running token total reaches
// the budget, Authorize fails; the call that crosses the line is still
// recorded in full.
func WithBudget(tokens int) LedgerOption {
	return func(l *Ledger) {
		l.budget = tokens
	}
}

// WithCostBudget sets a hard dollar budget. Once the running cost reaches the
// budget, Authorize fails. Like WithBudget, the check happens before a call is
// sent, so the call that crosses the line is still recorded in full. Both
// limits may be set; whichever trips first blocks further calls.
func WithCostBudget(usd float64) LedgerOption {
	return func(l *Ledger) {
		l.costBudget = usd
	}
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Authorize reports whether another provider call may proceed. It fails with
// *NoTokensAvailableError when the running token total or running cost has
// already reached its budget. Authorize never reserves: a call authorized
// near a limit may still push the total past it.
func (l *Ledger) Authorize() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.budget > 0 && l.totalTokens >= l.budget {
		return &NoTokensAvailableError{Budget: l.budget, Used: l.totalTokens}
	}
	if l.costBudget > 0 && l.totalCost >= l.costBudget {
		return &NoTokensAvailableError{CostBudget: l.costBudget, CostUsed: l.totalCost}
	}
	return nil
}

// Record appends an entry for a completed provider call, computing its dollar
// cost from pricing. It returns the recorded entry.
func (l *Ledger) Record(model string, tokens TokenCount, pricing ModelCost) Entry {
	entry := Entry{
		Model:  model,
		Tokens: tokens,
		Cost: pricing.CalculateTotalCost(
			tokens.PromptTokens, tokens.CompletionTokens,
			tokens.CachedTokens, tokens.ReasoningTokens,
		),
		At: time.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	l.totalTokens += tokens.Total()
	l.totalCost += entry.Cost
	return entry
}

// TotalTokens returns the running token total across all entries.
func (l *Ledger) TotalTokens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalTokens
}

// TotalCost returns the running dollar cost across all entries.
func (l *Ledger) TotalCost() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalCost
}

// Budget returns the configured token budget; 0 means unlimited.
func (l *Ledger) Budget() int {
	return l.budget
}

// CostBudget returns the configured dollar budget; 0 means unlimited.
func (l *Ledger) CostBudget() float64 {
	return l.costBudget
}

// Remaining returns the tokens left under the budget, or -1 when unlimited.
func (l *Ledger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.budget == 0 {
		return -1
	}
	remaining := l.budget - l.totalTokens
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Entries returns a copy of the recorded entries in append order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
