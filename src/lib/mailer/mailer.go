// Package mailer delivers outbound email through the configured driver.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"hotelmaint/src/lib"
	"log"
	"os"
)

type Mailer interface {
	Send(ctx context.Context, input *lib.SendMailInput) error
}

type SMTPMailer struct{}

func (SMTPMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	return lib.SendMail(ctx, input)
}

type htmlSender interface {
	Send(ctx context.Context, from string, to []string, subject, htmlBody string) error
}

// SESMailer sends through Amazon SES.
type SESMailer struct {
	Sender htmlSender
}

func (m SESMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	from := input.From
	if input.FromName != "" {
		from = fmt.Sprintf("%s <%s>", input.FromName, input.From)
	}
	return m.Sender.Send(ctx, from, input.To, input.Subject, input.Body)
}

type producer interface {
	Produce(ctx context.Context, body string) error
}

// QueueMailer hands the message to the email function behind EMAIL_QUEUE.
type QueueMailer struct {
	Queue producer
}

func (m QueueMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	body, err := json.Marshal(input)
	if err != nil {
		return err
	}
	if err := m.Queue.Produce(ctx, string(body)); err != nil {
		return fmt.Errorf("error sending message to queue: %w", err)
	}
	return nil
}

// LogMailer only logs; used locally and in tests.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, input *lib.SendMailInput) error {
	log.Printf("[mailer] to=%v subject=%q\n", input.To, input.Subject)
	return nil
}

// DefaultFrom reads SMTP_FROM, the sender for every driver.
func DefaultFrom() string {
	if from := os.Getenv("SMTP_FROM"); from != "" {
		return from
	}
	return "maintenance@localhost"
}
