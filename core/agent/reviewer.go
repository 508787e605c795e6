package agent

import (
	"context"

	"github.com/modal-agent/mago/providers/ai"
)

// Decision is the reviewer's verdict on a candidate answer.
type Decision string

const (
	// Approve accepts the candidate as the final answer.
	Approve Decision = "approve"
	// RequestRevision sends the feedback back to the model for another pass.
	RequestRevision Decision = "request_revision"
	// Reject refuses the candidate. The feedback is still fed back so the
	// model can try again, but a rejection with no iterations left ends the
	// call with [ErrReviewRejected].
	Reject Decision = "reject"
)

// Review is the outcome of a single review pass.
type Review struct {
	Decision Decision
	// Feedback is sent back to the model as a user message when the decision
	// is RequestRevision or Reject. Ignored on Approve.
	Feedback string
	// Image optionally attaches visual context to the feedback, e.g. a
	// rendering of the candidate output.
	Image *ai.Image
}

// Reviewer gates the agent's final candidate answers. It runs only once tool
// calling has settled; intermediate tool rounds are never reviewed. The full
// conversation history (candidate included, as its last entry) is passed
// alongside the candidate so a reviewer can judge the answer against the
// question that prompted it. The history slice is shared, not copied;
// reviewers must treat it as read-only.
type Reviewer interface {
	Review(ctx context.Context, candidate ai.Message, history []ai.Message) (Review, error)
}

// ReviewerFunc adapts a plain function to the [Reviewer] interface.
type ReviewerFunc func(ctx context.Context, candidate ai.Message, history []ai.Message) (Review, error)

func (f ReviewerFunc) Review(ctx context.Context, candidate ai.Message, history []ai.Message) (Review, error) {
	return f(ctx, candidate, history)
}

// PromptReviewer is a Reviewer that requests a revision with a fixed prompt.
// It is useful for self-review flows where the model critiques its own first
// draft before the answer is returned. The revision count resets on every
// approval, so an agent reusing the same PromptReviewer gets the full review
// cycle on each Ask.
type PromptReviewer struct {
	Prompt string
	// MaxRounds bounds how many revisions this reviewer requests before
	// approving. Zero means one round.
	MaxRounds int

	rounds int
}

func (r *PromptReviewer) Review(_ context.Context, _ ai.Message, _ []ai.Message) (Review, error) {
	limit := r.MaxRounds
	if limit <= 0 {
		limit = 1
	}
	if r.rounds >= limit {
		r.rounds = 0
		return Review{Decision: Approve}, nil
	}
	r.rounds++

	prompt := r.Prompt
	if prompt == "" {
		prompt = "Please review your previous answer and improve it if needed."
	}
	return Review{Decision: RequestRevision, Feedback: prompt}, nil
}
