package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
)

type appendTransactionRequest struct {
	MemberID         string     `json:"member_id"`
	Delta            int64      `json:"delta"`
	Kind             string     `json:"kind"`
	Reason           string     `json:"reason"`
	SourceActivityID string     `json:"source_activity_id"`
	OccurredAt       *time.Time `json:"occurred_at"`
}

func (s *Server) AppendTransaction(c *gin.Context) {
	var body appendTransactionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	txn, err := s.ledgerSvc.Append(c.Request.Context(), ledgerdomain.AppendRequest{
		MemberID:         body.MemberID,
		Delta:            body.Delta,
		Kind:             ledgerdomain.TransactionKind(body.Kind),
		Reason:           body.Reason,
		SourceActivityID: body.SourceActivityID,
		OccurredAt:       body.OccurredAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

func (s *Server) ListMemberTransactions(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	history, err := s.ledgerSvc.HistoryFor(c.Request.Context(), ledgerdomain.HistoryRequest{
		MemberID: c.Param("id"),
		Limit:    limit,
		Offset:   offset,
		AsOfID:   c.Query("as_of_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
