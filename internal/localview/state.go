// Package localview maintains an optimistic, client-side view of comments and
// their votes. Mutations apply to the view immediately, are remembered in a
// pending log keyed by the durable comment ID, and are either confirmed (the
// server agreed) or inverted (the server refused). All transitions are pure:
// Apply never mutates its input state.
package localview

import (
	"fmt"

	"github.com/iammohit64/wrap-up/internal/model"
)

// MutationKind identifies what a pending mutation did, so failure can
// invert exactly that.
type MutationKind string

const (
	MutationUpvote MutationKind = "upvote"
	MutationAnchor MutationKind = "anchor"
)

// Mutation is one optimistic change awaiting the server's verdict.
type Mutation struct {
	Kind      MutationKind
	CommentID string
	Voter     string
	VoterName string
}

// State is the view-model: comments keyed by durable ID, an index from
// ledger-assigned IDs back to durable IDs, and the pending-mutation log.
type State struct {
	Comments     map[string]model.Comment
	OnChainIndex map[int64]string
	Pending      map[string]Mutation
}

// NewState returns an empty view.
func NewState() State {
	return State{
		Comments:     map[string]model.Comment{},
		OnChainIndex: map[int64]string{},
		Pending:      map[string]Mutation{},
	}
}

// clone copies the state so transitions stay pure. Comment values are copied
// by assignment; the nested Upvoters slices are re-sliced on write.
func (s State) clone() State {
	next := State{
		Comments:     make(map[string]model.Comment, len(s.Comments)),
		OnChainIndex: make(map[int64]string, len(s.OnChainIndex)),
		Pending:      make(map[string]Mutation, len(s.Pending)),
	}
	for k, v := range s.Comments {
		next.Comments[k] = v
	}
	for k, v := range s.OnChainIndex {
		next.OnChainIndex[k] = v
	}
	for k, v := range s.Pending {
		next.Pending[k] = v
	}
	return next
}

// Resolve maps a ledger-assigned comment ID back to the durable ID.
func (s State) Resolve(onChainID int64) (string, bool) {
	id, ok := s.OnChainIndex[onChainID]
	return id, ok
}

// EffectKind names a side effect the caller should perform after a
// transition. Effects are requests, not actions: the view never does IO.
type EffectKind string

const (
	// EffectScheduleReload asks the caller to refetch authoritative state
	// for the article once confirmations have had time to land.
	EffectScheduleReload EffectKind = "schedule_reload"
)

// Effect is emitted by Apply alongside the next state.
type Effect struct {
	Kind       EffectKind
	ArticleURL string
}

// Event is a view-model transition input.
type Event interface{ isEvent() }

// CommentLoaded replaces or inserts a comment with server-authoritative data.
type CommentLoaded struct{ Comment model.Comment }

// UpvoteRequested applies an optimistic upvote and logs it as pending.
type UpvoteRequested struct {
	CommentID string
	Voter     string
	VoterName string
}

// UpvoteSettled resolves a pending upvote: accepted or refused.
type UpvoteSettled struct {
	CommentID string
	Accepted  bool
}

// AnchorRequested marks a comment as awaiting ledger confirmation.
type AnchorRequested struct{ CommentID string }

// AnchorSettled resolves a pending anchor. On success the comment carries
// its ledger ID and the caller is asked to schedule a reload.
type AnchorSettled struct {
	CommentID string
	OnChainID int64
	Accepted  bool
}

// CountSynced overwrites a comment's count with a confirmed total.
type CountSynced struct {
	CommentID string
	Count     int
}

func (CommentLoaded) isEvent()   {}
func (UpvoteRequested) isEvent() {}
func (UpvoteSettled) isEvent()   {}
func (AnchorRequested) isEvent() {}
func (AnchorSettled) isEvent()   {}
func (CountSynced) isEvent()     {}

func upvoteKey(commentID, voter string) string {
	return fmt.Sprintf("upvote:%s:%s", commentID, voter)
}

func anchorKey(commentID string) string {
	return "anchor:" + commentID
}

// Apply runs one transition and returns the next state plus any effects.
// Unknown comment IDs leave the state unchanged: events can race ahead of
// the loads that would introduce their subjects.
func Apply(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case CommentLoaded:
		next := s.clone()
		next.Comments[e.Comment.ID] = e.Comment
		if e.Comment.OnChainID != nil {
			next.OnChainIndex[*e.Comment.OnChainID] = e.Comment.ID
		}
		return next, nil

	case UpvoteRequested:
		c, ok := s.Comments[e.CommentID]
		if !ok {
			return s, nil
		}
		for _, u := range c.Upvoters {
			if u.Voter == e.Voter {
				return s, nil // already voted, nothing to stage
			}
		}
		next := s.clone()
		c.UpvoteCount++
		c.Upvoters = append(append([]model.Upvote{}, c.Upvoters...), model.Upvote{
			Voter:     e.Voter,
			VoterName: e.VoterName,
		})
		next.Comments[e.CommentID] = c
		next.Pending[upvoteKey(e.CommentID, e.Voter)] = Mutation{
			Kind:      MutationUpvote,
			CommentID: e.CommentID,
			Voter:     e.Voter,
			VoterName: e.VoterName,
		}
		return next, nil

	case UpvoteSettled:
		return settleUpvotes(s, e)

	case AnchorRequested:
		if _, ok := s.Comments[e.CommentID]; !ok {
			return s, nil
		}
		next := s.clone()
		next.Pending[anchorKey(e.CommentID)] = Mutation{
			Kind:      MutationAnchor,
			CommentID: e.CommentID,
		}
		return next, nil

	case AnchorSettled:
		c, ok := s.Comments[e.CommentID]
		if !ok {
			return s, nil
		}
		next := s.clone()
		delete(next.Pending, anchorKey(e.CommentID))
		if !e.Accepted {
			// The comment stays durable and off-chain; anchoring can be
			// retried without re-creating anything.
			return next, nil
		}
		onChainID := e.OnChainID
		c.OnChain = true
		c.OnChainID = &onChainID
		next.Comments[e.CommentID] = c
		next.OnChainIndex[onChainID] = e.CommentID
		return next, []Effect{{Kind: EffectScheduleReload, ArticleURL: c.ArticleURL}}

	case CountSynced:
		c, ok := s.Comments[e.CommentID]
		if !ok || e.Count < 0 {
			return s, nil
		}
		next := s.clone()
		c.UpvoteCount = e.Count
		next.Comments[e.CommentID] = c
		return next, nil
	}

	return s, nil
}

// settleUpvotes confirms or inverts every pending upvote on a comment.
// Settlement arrives per comment, not per voter: the server's answer covers
// whatever this view staged.
func settleUpvotes(s State, e UpvoteSettled) (State, []Effect) {
	next := s.clone()
	for key, mut := range s.Pending {
		if mut.Kind != MutationUpvote || mut.CommentID != e.CommentID {
			continue
		}
		delete(next.Pending, key)
		if e.Accepted {
			continue
		}
		// Invert: take back exactly the staged vote.
		c, ok := next.Comments[e.CommentID]
		if !ok {
			continue
		}
		if c.UpvoteCount > 0 {
			c.UpvoteCount--
		}
		kept := make([]model.Upvote, 0, len(c.Upvoters))
		for _, u := range c.Upvoters {
			if u.Voter != mut.Voter {
				kept = append(kept, u)
			}
		}
		c.Upvoters = kept
		next.Comments[e.CommentID] = c
	}
	return next, nil
}
