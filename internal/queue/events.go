package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iammohit64/wrap-up/internal/ledger"
)

// Event types for the chain stream
const (
	EventArticleSubmitted = "article_submitted"
	EventCommentPosted    = "comment_posted"
	EventCommentUpvoted   = "comment_upvoted"
	EventArticleUpvoted   = "article_upvoted"
	EventPointsAwarded    = "points_awarded"
)

// Stream names
const (
	StreamChain = "stream:chain"
)

// Consumer group name for reconciliation workers
const (
	ConsumerGroupChain = "chain_workers"
)

// ChainEvent represents a confirmed ledger event published to the chain
// stream. All chain events share this structure; only the fields relevant to
// the Type are set.
type ChainEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event was published

	TxHash      string `json:"tx_hash,omitempty"`
	BlockNumber uint64 `json:"block_number,omitempty"`

	// Ledger-assigned identifiers
	OnChainCommentID int64 `json:"on_chain_comment_id,omitempty"`
	OnChainArticleID int64 `json:"on_chain_article_id,omitempty"`

	// Actor address (author, voter, or points recipient)
	Actor string `json:"actor,omitempty"`

	// CommentPosted / ArticleSubmitted
	ContentHash string `json:"content_hash,omitempty"`

	// CommentUpvoted / ArticleUpvoted
	NewCount int64 `json:"new_count,omitempty"`

	// PointsAwarded
	PointsTotal int64 `json:"points_total,omitempty"`
}

// FromLedgerEvent converts a decoded contract log into a stream event.
func FromLedgerEvent(ev ledger.Event) ChainEvent {
	ce := ChainEvent{
		Timestamp:        time.Now().Unix(),
		TxHash:           ev.TxHash.Hex(),
		BlockNumber:      ev.BlockNumber,
		OnChainCommentID: ev.CommentID,
		OnChainArticleID: ev.ArticleID,
		Actor:            ev.Actor.Hex(),
		ContentHash:      ev.ContentHash,
		NewCount:         ev.NewCount,
		PointsTotal:      ev.Points,
	}
	switch ev.Kind {
	case ledger.EventArticleSubmitted:
		ce.Type = EventArticleSubmitted
	case ledger.EventCommentPosted:
		ce.Type = EventCommentPosted
	case ledger.EventCommentUpvoted:
		ce.Type = EventCommentUpvoted
	case ledger.EventArticleUpvoted:
		ce.Type = EventArticleUpvoted
	case ledger.EventPointsAwarded:
		ce.Type = EventPointsAwarded
	}
	return ce
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the event is serialized to JSON
// in a "data" field.
func (e ChainEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseChainEvent parses a ChainEvent from Redis stream message values.
func ParseChainEvent(values map[string]interface{}) (ChainEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ChainEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ChainEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ChainEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
