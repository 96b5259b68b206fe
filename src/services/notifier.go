package services

import (
	"context"
	"fmt"
	"hotelmaint/src/lib"
	"hotelmaint/src/lib/mailer"
	"hotelmaint/src/models"
	"hotelmaint/src/repository"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AssignmentNotifier records an in-app notification and emails the new
// assignee. Delivery runs in the background; failures are logged only.
type AssignmentNotifier struct {
	Store   *repository.Store
	Mailer  mailer.Mailer
	Feed    lib.Feed
	From    string
	AppHost string
	Timeout time.Duration

	wg sync.WaitGroup
}

func (n *AssignmentNotifier) OnAssignmentChanged(prev, next *uuid.UUID, ticket *models.Ticket) {
	if next == nil || (prev != nil && *prev == *next) {
		return
	}
	assignee := *next
	t := ticket.Clone()
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		timeout := n.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := n.deliver(ctx, assignee, &t); err != nil {
			log.Printf("Error notifying assignment of ticket %s: %s\n", t.ID, err.Error())
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (n *AssignmentNotifier) Wait() {
	n.wg.Wait()
}

func (n *AssignmentNotifier) deliver(ctx context.Context, assigneeID uuid.UUID, t *models.Ticket) error {
	user, err := n.Store.Users.Get(ctx, assigneeID)
	if err != nil {
		return fmt.Errorf("loading assignee: %w", err)
	}
	hotel, err := n.Store.Hotels.Get(ctx, t.HotelID)
	if err != nil {
		log.Printf("Error loading hotel %s for notification: %s\n", t.HotelID, err.Error())
		hotel = nil
	}
	email := mailer.AssignmentEmail{
		Ticket:   t,
		Hotel:    hotel,
		Assignee: user,
	}
	if n.AppHost != "" {
		email.Link = fmt.Sprintf("%s/tickets/%s", n.AppHost, t.ID)
	}
	input, title, body, err := email.Build(n.From)
	if err != nil {
		return err
	}

	notification := models.Notification{UserID: user.ID, TicketID: t.ID, Title: title, Body: body}
	if err := n.Store.Notifications.Create(ctx, &notification); err != nil {
		log.Printf("Error saving notification for %s: %s\n", user.ID, err.Error())
	} else {
		publishNotification(ctx, n.Feed, "create", notification.ID, user.ID)
	}

	if n.Mailer == nil {
		return nil
	}
	if err := n.Mailer.Send(ctx, input); err != nil {
		return fmt.Errorf("sending assignment email: %w", err)
	}
	return nil
}
