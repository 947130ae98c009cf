// Package game decides the outcome of trivia answers and drives the claim ledger.
//
// Per (item, user) the game is a one-way state machine: idle moves to correct, wrong
// or tooLate, and any later submission is answered from the recorded state.
package game

import (
	"context"
	"strings"

	"olympus.io/loot-of-olympus/internal/item"
	"olympus.io/loot-of-olympus/internal/ledger"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

var (
	ErrMissingItem  = errors.New("item is required")
	ErrEmptyAnswer  = errors.New("answer is required")
	ErrInvalidLimit = errors.New("max claims must be positive")
)

const DefaultAnonymousUsername = "anonymous"

// Result is the response to one answer submission.
type Result struct {
	Outcome Outcome
	Message string
	// set for correct and alreadyGot
	Collectible string
	// set for correct
	ClaimCount *int64
}

// InitState is the read-only view of one (item, user) pair.
type InitState struct {
	PostID       string
	Username     string
	Stats        ledger.Stats
	Collectibles []string
	ItemStatus   ItemStatus
	ClaimCount   int64
	MaxClaims    int64
}

type Evaluator struct {
	ledger    ledger.Ledger
	maxClaims int64
	anonymous string
}

type Option func(*Evaluator)

// WithAnonymousUsername sets the username used when identity resolution yields none.
func WithAnonymousUsername(name string) Option {
	return func(e *Evaluator) {
		if name != "" {
			e.anonymous = name
		}
	}
}

func NewEvaluator(l ledger.Ledger, maxClaims int64, opts ...Option) (*Evaluator, error) {
	if maxClaims <= 0 {
		return nil, ErrInvalidLimit
	}
	e := &Evaluator{
		ledger:    l,
		maxClaims: maxClaims,
		anonymous: DefaultAnonymousUsername,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Evaluator) MaxClaims() int64 {
	return e.maxClaims
}

func (e *Evaluator) username(name string) string {
	if strings.TrimSpace(name) == "" {
		return e.anonymous
	}
	return name
}

// NormalizeAnswer folds case and drops surrounding whitespace.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// Submit evaluates answer for username on it. Preconditions are checked before any
// ledger access. At most one of RecordCorrect or RecordWrong is called.
func (e *Evaluator) Submit(ctx context.Context, it *item.Item, username, answer string) (*Result, error) {
	if it == nil || it.PostID == "" {
		return nil, ErrMissingItem
	}
	if NormalizeAnswer(answer) == "" {
		return nil, ErrEmptyAnswer
	}
	a := &attempt{item: it, username: e.username(username)}

	outcome, matched, err := e.runGuards(ctx, a)
	if err != nil {
		return nil, errors.WithMessage(err, "check answer preconditions")
	}
	if matched {
		log.Debugf("post %v user %v short-circuited with %v", it.PostID, a.username, outcome)
		return e.result(outcome, it), nil
	}

	if NormalizeAnswer(answer) != NormalizeAnswer(it.Answer) {
		if err := e.ledger.RecordWrong(ctx, it.PostID, a.username); err != nil {
			return nil, errors.WithMessage(err, "lock item after wrong answer")
		}
		return e.result(OutcomeWrong, it), nil
	}

	count, err := e.ledger.RecordCorrect(ctx, it.PostID, a.username, it.Name)
	if err != nil {
		return nil, errors.WithMessage(err, "claim collectible")
	}
	if count > e.maxClaims {
		// two submissions read the count below the cap before either write landed
		log.Warnf("post %v claim count %v passed max claims %v", it.PostID, count, e.maxClaims)
	}
	res := e.result(OutcomeCorrect, it)
	res.ClaimCount = &count
	return res, nil
}

func (e *Evaluator) result(outcome Outcome, it *item.Item) *Result {
	res := &Result{Outcome: outcome, Message: outcome.Message()}
	if outcome == OutcomeCorrect || outcome == OutcomeAlreadyGot {
		res.Collectible = it.Name
	}
	return res
}

// Init reports the viewer's stats and the item status without consuming an attempt.
func (e *Evaluator) Init(ctx context.Context, it *item.Item, username string) (*InitState, error) {
	if it == nil || it.PostID == "" {
		return nil, ErrMissingItem
	}
	a := &attempt{item: it, username: e.username(username)}

	stats, err := e.ledger.UserStats(ctx, a.username)
	if err != nil {
		return nil, errors.WithMessage(err, "load user stats")
	}
	collectibles, err := e.ledger.UserCollectibles(ctx, a.username)
	if err != nil {
		return nil, errors.WithMessage(err, "load user collectibles")
	}
	a.owned = collectibles
	outcome, _, err := e.runGuards(ctx, a)
	if err != nil {
		return nil, errors.WithMessage(err, "derive item status")
	}
	count, err := e.ledger.ClaimCount(ctx, it.PostID)
	if err != nil {
		return nil, errors.WithMessage(err, "load claim count")
	}
	return &InitState{
		PostID:       it.PostID,
		Username:     a.username,
		Stats:        stats,
		Collectibles: collectibles,
		ItemStatus:   outcome.Status(),
		ClaimCount:   count,
		MaxClaims:    e.maxClaims,
	}, nil
}

// Profile is a user's stats and owned collectibles, independent of any item.
type Profile struct {
	Username     string
	Stats        ledger.Stats
	Collectibles []string
}

func (e *Evaluator) Profile(ctx context.Context, username string) (*Profile, error) {
	name := e.username(username)
	stats, err := e.ledger.UserStats(ctx, name)
	if err != nil {
		return nil, errors.WithMessage(err, "load user stats")
	}
	collectibles, err := e.ledger.UserCollectibles(ctx, name)
	if err != nil {
		return nil, errors.WithMessage(err, "load user collectibles")
	}
	return &Profile{Username: name, Stats: stats, Collectibles: collectibles}, nil
}
