package localview

import (
	"testing"

	"github.com/iammohit64/wrap-up/internal/model"
)

func loadedState(t *testing.T, comments ...model.Comment) State {
	t.Helper()
	s := NewState()
	for _, c := range comments {
		s, _ = Apply(s, CommentLoaded{Comment: c})
	}
	return s
}

func baseComment() model.Comment {
	return model.Comment{
		ID:          "c1",
		ArticleURL:  "https://example.com/post",
		Content:     "great write-up",
		Author:      "0xaaaa",
		UpvoteCount: 2,
		Upvoters: []model.Upvote{
			{Voter: "0xbbbb", VoterName: "bob"},
			{Voter: "0xcccc", VoterName: "carol"},
		},
	}
}

func TestApply_CommentLoaded(t *testing.T) {
	onChainID := int64(7)
	c := baseComment()
	c.OnChain = true
	c.OnChainID = &onChainID

	s, effects := Apply(NewState(), CommentLoaded{Comment: c})
	if len(effects) != 0 {
		t.Errorf("loading emits no effects, got %v", effects)
	}
	if got := s.Comments["c1"]; got.UpvoteCount != 2 {
		t.Errorf("upvote_count = %d, want 2", got.UpvoteCount)
	}
	if id, ok := s.Resolve(7); !ok || id != "c1" {
		t.Errorf("Resolve(7) = %q, %v; want c1, true", id, ok)
	}
}

func TestApply_UpvoteRequested(t *testing.T) {
	s0 := loadedState(t, baseComment())

	s1, _ := Apply(s0, UpvoteRequested{CommentID: "c1", Voter: "0xdddd", VoterName: "dave"})

	if got := s1.Comments["c1"].UpvoteCount; got != 3 {
		t.Errorf("upvote_count = %d, want 3", got)
	}
	if n := len(s1.Comments["c1"].Upvoters); n != 3 {
		t.Errorf("upvoters = %d, want 3", n)
	}
	if len(s1.Pending) != 1 {
		t.Errorf("pending mutations = %d, want 1", len(s1.Pending))
	}

	// Purity: the input state is untouched.
	if got := s0.Comments["c1"].UpvoteCount; got != 2 {
		t.Errorf("input state mutated: upvote_count = %d, want 2", got)
	}
	if len(s0.Pending) != 0 {
		t.Error("input state mutated: pending log grew")
	}
}

func TestApply_UpvoteRequested_DuplicateVoter(t *testing.T) {
	s0 := loadedState(t, baseComment())

	s1, _ := Apply(s0, UpvoteRequested{CommentID: "c1", Voter: "0xbbbb", VoterName: "bob"})

	if got := s1.Comments["c1"].UpvoteCount; got != 2 {
		t.Errorf("duplicate vote changed count to %d", got)
	}
	if len(s1.Pending) != 0 {
		t.Error("duplicate vote should not be staged")
	}
}

func TestApply_UpvoteRequested_UnknownComment(t *testing.T) {
	s0 := NewState()
	s1, _ := Apply(s0, UpvoteRequested{CommentID: "ghost", Voter: "0xdddd"})
	if len(s1.Pending) != 0 || len(s1.Comments) != 0 {
		t.Error("unknown comment should leave state unchanged")
	}
}

func TestApply_UpvoteSettled_Accepted(t *testing.T) {
	s, _ := Apply(loadedState(t, baseComment()), UpvoteRequested{CommentID: "c1", Voter: "0xdddd", VoterName: "dave"})

	s, _ = Apply(s, UpvoteSettled{CommentID: "c1", Accepted: true})

	if got := s.Comments["c1"].UpvoteCount; got != 3 {
		t.Errorf("accepted vote reverted: count = %d, want 3", got)
	}
	if len(s.Pending) != 0 {
		t.Error("settled mutation should leave the pending log")
	}
}

func TestApply_UpvoteSettled_Rejected(t *testing.T) {
	s, _ := Apply(loadedState(t, baseComment()), UpvoteRequested{CommentID: "c1", Voter: "0xdddd", VoterName: "dave"})

	s, _ = Apply(s, UpvoteSettled{CommentID: "c1", Accepted: false})

	c := s.Comments["c1"]
	if c.UpvoteCount != 2 {
		t.Errorf("rejected vote not inverted: count = %d, want 2", c.UpvoteCount)
	}
	for _, u := range c.Upvoters {
		if u.Voter == "0xdddd" {
			t.Error("rejected voter still present")
		}
	}
	if len(s.Pending) != 0 {
		t.Error("settled mutation should leave the pending log")
	}
}

func TestApply_AnchorSettled_Accepted(t *testing.T) {
	s, _ := Apply(loadedState(t, baseComment()), AnchorRequested{CommentID: "c1"})
	if len(s.Pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(s.Pending))
	}

	s, effects := Apply(s, AnchorSettled{CommentID: "c1", OnChainID: 7, Accepted: true})

	c := s.Comments["c1"]
	if !c.OnChain || c.OnChainID == nil || *c.OnChainID != 7 {
		t.Errorf("comment not anchored: %+v", c)
	}
	if id, ok := s.Resolve(7); !ok || id != "c1" {
		t.Errorf("Resolve(7) = %q, %v; want c1, true", id, ok)
	}
	if len(s.Pending) != 0 {
		t.Error("settled anchor should leave the pending log")
	}
	if len(effects) != 1 || effects[0].Kind != EffectScheduleReload {
		t.Fatalf("effects = %v, want one schedule_reload", effects)
	}
	if effects[0].ArticleURL != "https://example.com/post" {
		t.Errorf("reload effect for %q", effects[0].ArticleURL)
	}
}

func TestApply_AnchorSettled_Rejected(t *testing.T) {
	s, _ := Apply(loadedState(t, baseComment()), AnchorRequested{CommentID: "c1"})

	s, effects := Apply(s, AnchorSettled{CommentID: "c1", Accepted: false})

	c := s.Comments["c1"]
	if c.OnChain || c.OnChainID != nil {
		t.Error("rejected anchor must leave the comment off-chain")
	}
	if len(s.Pending) != 0 {
		t.Error("settled anchor should leave the pending log")
	}
	if len(effects) != 0 {
		t.Errorf("rejected anchor emits no effects, got %v", effects)
	}
}

func TestApply_CountSynced(t *testing.T) {
	s0 := loadedState(t, baseComment())

	s1, _ := Apply(s0, CountSynced{CommentID: "c1", Count: 9})
	if got := s1.Comments["c1"].UpvoteCount; got != 9 {
		t.Errorf("count = %d, want 9", got)
	}

	// Confirmed totals overwrite, including down to zero.
	s2, _ := Apply(s1, CountSynced{CommentID: "c1", Count: 0})
	if got := s2.Comments["c1"].UpvoteCount; got != 0 {
		t.Errorf("count = %d, want 0", got)
	}

	// Negative totals are not a thing the ledger can report.
	s3, _ := Apply(s2, CountSynced{CommentID: "c1", Count: -1})
	if got := s3.Comments["c1"].UpvoteCount; got != 0 {
		t.Errorf("negative count applied: %d", got)
	}

	// The upvoter tuples survive count overwrites.
	if n := len(s2.Comments["c1"].Upvoters); n != 2 {
		t.Errorf("upvoters = %d, want 2", n)
	}
}
