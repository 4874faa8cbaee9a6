package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type AppendRequest struct {
	MemberID         string
	Delta            int64
	Kind             TransactionKind
	Reason           string
	SourceActivityID string
	OccurredAt       *time.Time
}

type HistoryRequest struct {
	MemberID string
	Limit    int
	Offset   int
	// AsOfID pins the read to the ledger head observed on the first page,
	// making a paginated walk restartable and stable under concurrent
	// appends. Zero means "current head"; the response echoes the head so
	// callers can pass it back.
	AsOfID string
}

type HistoryResponse struct {
	Transactions []PointTransaction `json:"transactions"`
	AsOfID       string             `json:"as_of_id"`
}

type Service interface {
	// Append durably persists one transaction. It is a plain insert:
	// no denormalized total is touched, which is what keeps concurrent
	// appends lock-free.
	Append(context.Context, AppendRequest) (PointTransaction, error)
	// AppendTx is Append inside a caller-owned transaction, used by the
	// rating workflow to commit a state transition and its ledger entry
	// as one atomic unit.
	AppendTx(ctx context.Context, tx *gorm.DB, req AppendRequest) (PointTransaction, error)
	// TotalFor sums all deltas for the member. A member with no
	// transactions totals 0; that is not an error.
	TotalFor(ctx context.Context, memberID string) (int64, error)
	// HistoryFor returns transactions newest first.
	HistoryFor(context.Context, HistoryRequest) (HistoryResponse, error)
}

var (
	ErrInvalidMemberID = errors.New("invalid_member_id")
	ErrUnknownMember   = errors.New("unknown_member")
	ErrZeroDelta       = errors.New("zero_delta")
	ErrInvalidKind     = errors.New("invalid_kind")
	ErrInvalidSource   = errors.New("invalid_source_activity_id")
	ErrInvalidAsOf     = errors.New("invalid_as_of_id")
	ErrDuplicateSource = errors.New("duplicate_source_activity")
)
