package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Event signatures emitted by the community contract. Signature strings list
// every parameter in declaration order, indexed or not:
//
//	ArticleSubmitted(uint256 indexed articleId, string ipfsHash, address indexed curator, uint256 timestamp)
//	ArticleUpvoted(uint256 indexed articleId, address indexed voter, address indexed curator, uint256 newUpvoteCount)
//	CommentPosted(uint256 indexed articleId, uint256 indexed commentId, string ipfsHash, address indexed commenter, uint256 timestamp)
//	CommentUpvoted(uint256 indexed commentId, uint256 indexed articleId, address indexed voter, address commenter, uint256 newUpvoteCount)
//	PointsAwarded(address indexed user, uint256 pointsEarned, uint256 totalPoints)
var (
	articleSubmittedSignature = gethcrypto.Keccak256Hash([]byte("ArticleSubmitted(uint256,string,address,uint256)"))
	commentPostedSignature    = gethcrypto.Keccak256Hash([]byte("CommentPosted(uint256,uint256,string,address,uint256)"))
	commentUpvotedSignature   = gethcrypto.Keccak256Hash([]byte("CommentUpvoted(uint256,uint256,address,address,uint256)"))
	articleUpvotedSignature   = gethcrypto.Keccak256Hash([]byte("ArticleUpvoted(uint256,address,address,uint256)"))
	pointsAwardedSignature    = gethcrypto.Keccak256Hash([]byte("PointsAwarded(address,uint256,uint256)"))
)

// ErrUnknownEvent marks a log whose topic is not one of ours. Callers skip
// these: contracts emit more than this subsystem consumes.
var ErrUnknownEvent = errors.New("unknown event topic")

type EventKind string

const (
	EventArticleSubmitted EventKind = "ArticleSubmitted"
	EventCommentPosted    EventKind = "CommentPosted"
	EventCommentUpvoted   EventKind = "CommentUpvoted"
	EventArticleUpvoted   EventKind = "ArticleUpvoted"
	EventPointsAwarded    EventKind = "PointsAwarded"
)

// Event is a decoded contract log. Only the fields relevant to the Kind are
// populated; the on-chain IDs here are the ledger's numeric identifiers, not
// the relational store's UUIDs. Actor is the address that caused the event:
// curator, commenter, voter, or points recipient.
type Event struct {
	Kind        EventKind
	ArticleID   int64
	CommentID   int64
	Actor       common.Address
	ContentHash string
	NewCount    int64
	Points      int64
	TxHash      common.Hash
	BlockNumber uint64
}

func mustType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return ty
}

// Non-indexed data layouts per event.
var (
	hashTimestampArgs  = abi.Arguments{{Type: mustType("string")}, {Type: mustType("uint256")}}
	commenterCountArgs = abi.Arguments{{Type: mustType("address")}, {Type: mustType("uint256")}}
	countArgs          = abi.Arguments{{Type: mustType("uint256")}}
	pointsArgs         = abi.Arguments{{Type: mustType("uint256")}, {Type: mustType("uint256")}}
)

// unpackHashTimestamp decodes the (ipfsHash, timestamp) data payload shared by
// ArticleSubmitted and CommentPosted. The timestamp is not consumed here.
func unpackHashTimestamp(data []byte) (string, error) {
	vals, err := hashTimestampArgs.Unpack(data)
	if err != nil {
		return "", fmt.Errorf("unpack (string,uint256) data: %w", err)
	}
	s, ok := vals[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected argument type %T", vals[0])
	}
	return s, nil
}

func unpackCount(args abi.Arguments, data []byte, index int) (int64, error) {
	vals, err := args.Unpack(data)
	if err != nil {
		return 0, fmt.Errorf("unpack event data: %w", err)
	}
	count, ok := vals[index].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected argument type %T", vals[index])
	}
	return count.Int64(), nil
}

// ParseLog decodes a single contract log into an Event. Logs with an
// unrecognised topic fail with ErrUnknownEvent.
func ParseLog(lg *gethtypes.Log) (*Event, error) {
	if lg == nil || len(lg.Topics) == 0 {
		return nil, ErrUnknownEvent
	}

	ev := &Event{
		TxHash:      lg.TxHash,
		BlockNumber: lg.BlockNumber,
	}

	switch lg.Topics[0] {
	case articleSubmittedSignature:
		// topics: articleId, curator; data: ipfsHash, timestamp
		if len(lg.Topics) != 3 {
			return nil, fmt.Errorf("ArticleSubmitted: want 3 topics, got %d", len(lg.Topics))
		}
		hash, err := unpackHashTimestamp(lg.Data)
		if err != nil {
			return nil, err
		}
		ev.Kind = EventArticleSubmitted
		ev.ArticleID = lg.Topics[1].Big().Int64()
		ev.Actor = common.BytesToAddress(lg.Topics[2].Bytes())
		ev.ContentHash = hash

	case commentPostedSignature:
		// topics: articleId, commentId, commenter; data: ipfsHash, timestamp
		if len(lg.Topics) != 4 {
			return nil, fmt.Errorf("CommentPosted: want 4 topics, got %d", len(lg.Topics))
		}
		hash, err := unpackHashTimestamp(lg.Data)
		if err != nil {
			return nil, err
		}
		ev.Kind = EventCommentPosted
		ev.ArticleID = lg.Topics[1].Big().Int64()
		ev.CommentID = lg.Topics[2].Big().Int64()
		ev.Actor = common.BytesToAddress(lg.Topics[3].Bytes())
		ev.ContentHash = hash

	case commentUpvotedSignature:
		// topics: commentId, articleId, voter; data: commenter, newUpvoteCount
		if len(lg.Topics) != 4 {
			return nil, fmt.Errorf("CommentUpvoted: want 4 topics, got %d", len(lg.Topics))
		}
		count, err := unpackCount(commenterCountArgs, lg.Data, 1)
		if err != nil {
			return nil, err
		}
		ev.Kind = EventCommentUpvoted
		ev.CommentID = lg.Topics[1].Big().Int64()
		ev.ArticleID = lg.Topics[2].Big().Int64()
		ev.Actor = common.BytesToAddress(lg.Topics[3].Bytes())
		ev.NewCount = count

	case articleUpvotedSignature:
		// topics: articleId, voter, curator; data: newUpvoteCount
		if len(lg.Topics) != 4 {
			return nil, fmt.Errorf("ArticleUpvoted: want 4 topics, got %d", len(lg.Topics))
		}
		count, err := unpackCount(countArgs, lg.Data, 0)
		if err != nil {
			return nil, err
		}
		ev.Kind = EventArticleUpvoted
		ev.ArticleID = lg.Topics[1].Big().Int64()
		ev.Actor = common.BytesToAddress(lg.Topics[2].Bytes())
		ev.NewCount = count

	case pointsAwardedSignature:
		// topics: user; data: pointsEarned, totalPoints
		if len(lg.Topics) != 2 {
			return nil, fmt.Errorf("PointsAwarded: want 2 topics, got %d", len(lg.Topics))
		}
		earned, err := unpackCount(pointsArgs, lg.Data, 0)
		if err != nil {
			return nil, err
		}
		total, err := unpackCount(pointsArgs, lg.Data, 1)
		if err != nil {
			return nil, err
		}
		ev.Kind = EventPointsAwarded
		ev.Actor = common.BytesToAddress(lg.Topics[1].Bytes())
		ev.NewCount = earned
		ev.Points = total

	default:
		return nil, ErrUnknownEvent
	}

	return ev, nil
}
