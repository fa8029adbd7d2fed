package models

import (
	"time"

	"github.com/google/uuid"
)

type SwapType string

const (
	SwapTypeDirect           SwapType = "DIRECT_SWAP"
	SwapTypePointsRedemption SwapType = "POINTS_REDEMPTION"
)

type SwapStatus string

const (
	SwapPending   SwapStatus = "PENDING"
	SwapAccepted  SwapStatus = "ACCEPTED"
	SwapRejected  SwapStatus = "REJECTED"
	SwapCancelled SwapStatus = "CANCELLED"
	SwapCompleted SwapStatus = "COMPLETED"
	SwapFailed    SwapStatus = "FAILED"
)

// transitions lists the statuses reachable from each non-terminal status.
var transitions = map[SwapStatus][]SwapStatus{
	SwapPending:  {SwapAccepted, SwapRejected, SwapCancelled},
	SwapAccepted: {SwapCompleted, SwapFailed},
}

func (s SwapStatus) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

func (s SwapStatus) CanTransitionTo(next SwapStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SwapStatus) Valid() bool {
	switch s {
	case SwapPending, SwapAccepted, SwapRejected, SwapCancelled, SwapCompleted, SwapFailed:
		return true
	}
	return false
}

type SwapRequest struct {
	ID              uuid.UUID  `json:"id"`
	OwnerItemID     uuid.UUID  `json:"ownerItemId"`
	OwnerID         uuid.UUID  `json:"ownerId"`
	RequesterID     uuid.UUID  `json:"requesterId"`
	RequesterItemID *uuid.UUID `json:"requesterItemId,omitempty"`
	SwapType        SwapType   `json:"swapType"`
	PointsUsed      *int32     `json:"pointsUsed,omitempty"`
	Status          SwapStatus `json:"status"`
	Message         string     `json:"message,omitempty"`
	FailureReason   string     `json:"failureReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ItemIDs returns every item the swap would move.
func (r *SwapRequest) ItemIDs() []uuid.UUID {
	ids := []uuid.UUID{r.OwnerItemID}
	if r.RequesterItemID != nil {
		ids = append(ids, *r.RequesterItemID)
	}
	return ids
}

type SwapDirection string

const (
	DirectionIncoming SwapDirection = "incoming"
	DirectionOutgoing SwapDirection = "outgoing"
	DirectionAll      SwapDirection = "all"
)
