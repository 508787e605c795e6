package agent

import "errors"

// ErrIterationLimit is returned when the shared iteration cap is exhausted
// before a final answer is produced. Tool-call rounds and review cycles both
// consume iterations from the same budget.
var ErrIterationLimit = errors.New("agent: iteration limit reached without a final answer")

// ErrReviewRejected is returned when the reviewer rejects the final candidate
// and no iterations remain to attempt a revision.
var ErrReviewRejected = errors.New("agent: answer rejected by reviewer")
