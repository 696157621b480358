package permission

import (
	"context"
	"fmt"
	"log"

	"backend-glimpse/internal/auth"
)

// Decision is the evaluator's verdict for one viewer/content pair. Decisions
// are computed fresh on every view and never cached: follow edges and
// ownership can change between requests.
type Decision int

const (
	// Deny withholds the content entirely.
	Deny Decision = iota
	// Allow grants the full content body.
	Allow
	// RequiresSecret means the page is reachable but the body stays locked
	// until the secret gate confirms the password. Password content keeps its
	// metadata renderable without a password, so this is an allow-with-lock,
	// not a deny.
	RequiresSecret
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RequiresSecret:
		return "requires_secret"
	default:
		return "deny"
	}
}

// Descriptor is the slice of a content item the evaluator needs.
type Descriptor struct {
	ContentID  string
	OwnerID    string
	Visibility Visibility
	HasSecret  bool
}

// FollowChecker is the single graph read the evaluator depends on.
// Implemented by follow.Service with an indexed existence query.
type FollowChecker interface {
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
}

// EvaluationError marks a failed graph read. It is never collapsed into a
// Deny or Allow; callers surface it as a transient failure instead of a
// permission verdict.
type EvaluationError struct {
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("permission evaluation failed: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

type Evaluator struct {
	graph FollowChecker
}

func NewEvaluator(graph FollowChecker) *Evaluator {
	return &Evaluator{graph: graph}
}

// Evaluate decides whether viewer may see the content behind desc. It is a
// total function over every input combination; the only I/O is the follow
// edge reads, issued lazily and only for follower-dependent modes.
func (e *Evaluator) Evaluate(ctx context.Context, desc Descriptor, viewer auth.Identity) (Decision, error) {
	// Self-access invariant: the owner sees their own content unconditionally,
	// checked before anything else so no graph read and no secret gate ever
	// stands between an author and their work.
	if !viewer.IsAnonymous() && viewer.UserID == desc.OwnerID {
		return Allow, nil
	}

	switch NormalizeVisibility(string(desc.Visibility)) {
	case VisibilityPublic:
		return Allow, nil

	case VisibilityPassword:
		if !desc.HasSecret {
			// Password-gated content without a stored hash is misconfigured.
			// Fail closed and leave a data-integrity trail; the viewer just
			// sees an ordinary deny.
			log.Printf("content %s has password visibility but no secret hash", desc.ContentID)
			return Deny, nil
		}
		return RequiresSecret, nil

	case VisibilityFollowersOnly:
		if viewer.IsAnonymous() {
			return Deny, nil
		}
		follows, err := e.graph.IsFollowing(ctx, viewer.UserID, desc.OwnerID)
		if err != nil {
			return Deny, &EvaluationError{Err: err}
		}
		if follows {
			return Allow, nil
		}
		return Deny, nil

	case VisibilityMutualsOnly:
		if viewer.IsAnonymous() {
			return Deny, nil
		}
		follows, err := e.graph.IsFollowing(ctx, viewer.UserID, desc.OwnerID)
		if err != nil {
			return Deny, &EvaluationError{Err: err}
		}
		if !follows {
			return Deny, nil
		}
		followedBack, err := e.graph.IsFollowing(ctx, desc.OwnerID, viewer.UserID)
		if err != nil {
			return Deny, &EvaluationError{Err: err}
		}
		if followedBack {
			return Allow, nil
		}
		return Deny, nil

	default:
		// Unknown visibility values deny. A typo or a future mode must never
		// fall back to permissive.
		return Deny, nil
	}
}
