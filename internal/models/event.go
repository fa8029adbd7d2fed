package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SwapEvent is published on every swap request transition.
type SwapEvent struct {
	EventType       string     `json:"event_type"`
	SwapID          uuid.UUID  `json:"swap_id"`
	OwnerItemID     uuid.UUID  `json:"owner_item_id"`
	RequesterItemID *uuid.UUID `json:"requester_item_id,omitempty"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	RequesterID     uuid.UUID  `json:"requester_id"`
	SwapType        SwapType   `json:"swap_type"`
	PointsUsed      *int32     `json:"points_used,omitempty"`
	Status          SwapStatus `json:"status"`
	Reason          string     `json:"reason,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

func NewSwapEvent(req *SwapRequest) SwapEvent {
	return SwapEvent{
		EventType:       "swap." + strings.ToLower(string(req.Status)),
		SwapID:          req.ID,
		OwnerItemID:     req.OwnerItemID,
		RequesterItemID: req.RequesterItemID,
		OwnerID:         req.OwnerID,
		RequesterID:     req.RequesterID,
		SwapType:        req.SwapType,
		PointsUsed:      req.PointsUsed,
		Status:          req.Status,
		Reason:          req.FailureReason,
		OccurredAt:      time.Now().UTC(),
	}
}

const (
	ItemCreated  = "item.created"
	ItemApproved = "item.approved"
	ItemRelisted = "item.relisted"
	ItemRemoved  = "item.removed"
)

type ItemEvent struct {
	EventType  string    `json:"event_type"`
	ItemID     uuid.UUID `json:"item_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewItemEvent(eventType string, item *Item) ItemEvent {
	return ItemEvent{
		EventType:  eventType,
		ItemID:     item.ID,
		OwnerID:    item.OwnerID,
		OccurredAt: time.Now().UTC(),
	}
}
