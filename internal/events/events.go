// Package events publishes library lifecycle events to downstream consumers.
package events

import (
	"context"
	"time"
)

const (
	BorrowRequested  = "borrow.requested"
	BorrowAccepted   = "borrow.accepted"
	BorrowActivated  = "borrow.activated"
	BorrowRejected   = "borrow.rejected"
	BorrowReturned   = "borrow.returned"
	BorrowExtended   = "borrow.extended"
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingFulfilled = "booking.fulfilled"
	DonationDecided  = "donation.decided"
)

type Event struct {
	Type     string    `json:"type"`
	EntityID int64     `json:"entity_id"`
	UserID   int64     `json:"user_id"`
	BookID   int64     `json:"book_id,omitempty"`
	Status   string    `json:"status"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
