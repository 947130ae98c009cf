package game

import (
	"context"

	"olympus.io/loot-of-olympus/internal/item"
)

// attempt is one (item, user) pair under evaluation.
type attempt struct {
	item     *item.Item
	username string
	// owned collectible names, nil until loaded
	owned []string
}

// guard short-circuits evaluation when matched. Guards run in slice order and the
// first match decides the outcome without any ledger write.
type guard struct {
	name  string
	check func(ctx context.Context, a *attempt) (Outcome, bool, error)
}

func (e *Evaluator) guards() []guard {
	return []guard{
		{name: "owned", check: e.ownsCollectible},
		{name: "claimed", check: e.hasClaimed},
		{name: "failed", check: e.hasFailed},
		{name: "capReached", check: e.capReached},
	}
}

// runGuards returns the first matching guard outcome, matched is false when every
// guard let the attempt through.
func (e *Evaluator) runGuards(ctx context.Context, a *attempt) (outcome Outcome, matched bool, err error) {
	for _, g := range e.guards() {
		outcome, matched, err = g.check(ctx, a)
		if err != nil || matched {
			return outcome, matched, err
		}
	}
	return "", false, nil
}

// ownership by name covers the same collectible awarded by a different post
func (e *Evaluator) ownsCollectible(ctx context.Context, a *attempt) (Outcome, bool, error) {
	if a.owned == nil {
		owned, err := e.ledger.UserCollectibles(ctx, a.username)
		if err != nil {
			return "", false, err
		}
		a.owned = owned
	}
	for _, name := range a.owned {
		if name == a.item.Name {
			return OutcomeAlreadyGot, true, nil
		}
	}
	return "", false, nil
}

func (e *Evaluator) hasClaimed(ctx context.Context, a *attempt) (Outcome, bool, error) {
	claimed, err := e.ledger.HasClaimed(ctx, a.item.PostID, a.username)
	if err != nil || !claimed {
		return "", false, err
	}
	return OutcomeAlreadyGot, true, nil
}

func (e *Evaluator) hasFailed(ctx context.Context, a *attempt) (Outcome, bool, error) {
	failed, err := e.ledger.HasFailed(ctx, a.item.PostID, a.username)
	if err != nil || !failed {
		return "", false, err
	}
	return OutcomeAlreadyFailed, true, nil
}

func (e *Evaluator) capReached(ctx context.Context, a *attempt) (Outcome, bool, error) {
	count, err := e.ledger.ClaimCount(ctx, a.item.PostID)
	if err != nil || count < e.maxClaims {
		return "", false, err
	}
	return OutcomeTooLate, true, nil
}
