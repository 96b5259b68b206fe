// Package services holds the use cases behind the HTTP handlers. Each
// operation takes the caller's session explicitly and consults policy
// before touching the store.
package services

import (
	"context"
	"errors"
	"hotelmaint/src/config"
	"hotelmaint/src/lib"
	"hotelmaint/src/models"
	"hotelmaint/src/policy"
	"hotelmaint/src/session"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaTooLarge    = errors.New("media exceeds the size limit")
	// ErrInvalidReference is returned when a referenced room or hotel does
	// not exist or belongs to another hotel.
	ErrInvalidReference = errors.New("invalid reference")
)

type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	SignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Notifier receives assignment changes after they are committed.
type Notifier interface {
	OnAssignmentChanged(prev, next *uuid.UUID, ticket *models.Ticket)
}

// KeyClaimer deduplicates retried submissions.
type KeyClaimer interface {
	Claim(ctx context.Context, key, value string) (held string, claimed bool, err error)
	Release(ctx context.Context, key string) error
}

func publish(ctx context.Context, feed lib.Feed, channel string, c lib.Change) {
	if feed == nil {
		return
	}
	if err := feed.Publish(ctx, channel, c); err != nil {
		log.Printf("[realtime] Error publishing %s %s: %s\n", c.Entity, c.Op, err.Error())
	}
}

func ticketChange(op string, id, hotelID uuid.UUID) lib.Change {
	h := hotelID
	return lib.Change{Entity: "ticket", Op: op, ID: id, HotelID: &h}
}

func publishTicket(ctx context.Context, feed lib.Feed, op string, id, hotelID uuid.UUID) {
	publish(ctx, feed, config.TICKET_CHANNEL, ticketChange(op, id, hotelID))
}

func publishNotification(ctx context.Context, feed lib.Feed, op string, id, userID uuid.UUID) {
	u := userID
	publish(ctx, feed, config.NOTIFICATION_CHANNEL, lib.Change{Entity: "notification", Op: op, ID: id, UserID: &u})
}

// ChangeVisible reports whether c concerns something sess may see.
func ChangeVisible(sess *session.Session, c lib.Change) bool {
	switch {
	case c.UserID != nil:
		return sess != nil && *c.UserID == sess.UserID
	case c.HotelID != nil:
		return policy.CanSeeHotel(sess, *c.HotelID)
	}
	return false
}
