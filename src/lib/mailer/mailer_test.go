package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"hotelmaint/src/lib"
	"hotelmaint/src/models"
	"hotelmaint/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeQueue struct {
	bodies []string
	err    error
}

func (q *fakeQueue) Produce(_ context.Context, body string) error {
	q.bodies = append(q.bodies, body)
	return q.err
}

type fakeSES struct {
	from, subject string
}

func (s *fakeSES) Send(_ context.Context, from string, _ []string, subject, _ string) error {
	s.from, s.subject = from, subject
	return nil
}

func TestQueueMailer(t *testing.T) {
	q := &fakeQueue{}
	m := QueueMailer{Queue: q}
	require.NoError(t, m.Send(context.Background(), &lib.SendMailInput{
		From: "a@example.com", To: []string{"b@example.com"}, Subject: "hi", Body: "<p>x</p>", Html: true,
	}))
	require.Len(t, q.bodies, 1)
	assert.Equal(t, "b@example.com", gjson.Get(q.bodies[0], "to.0").String())
	assert.True(t, gjson.Get(q.bodies[0], "html").Bool())

	q.err = errors.New("queue down")
	assert.ErrorIs(t, m.Send(context.Background(), &lib.SendMailInput{}), q.err)
}

func TestSESMailerFormatsSender(t *testing.T) {
	s := &fakeSES{}
	require.NoError(t, SESMailer{Sender: s}.Send(context.Background(), &lib.SendMailInput{
		From: "a@example.com", FromName: "Hotel Alameda", Subject: "hi",
	}))
	assert.Equal(t, "Hotel Alameda <a@example.com>", s.from)
}

func TestAssignmentEmail(t *testing.T) {
	e := AssignmentEmail{
		Ticket: &models.Ticket{
			Title:    "Leak <under> sink",
			Area:     "Bathroom",
			Category: types.CATEGORY_PLUMBING,
			Priority: types.PRIORITY_URGENT,
			Room:     &models.Room{Number: "204"},
		},
		Hotel:    &models.Hotel{Name: "Alameda"},
		Assignee: &models.User{Email: "tech@example.com", Locale: "en"},
		Link:     "https://app.example.com/tickets/1",
	}
	input, title, body, err := e.Build("maintenance@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ticket assigned", title)
	assert.Equal(t, "Leak <under> sink (PLUMBING) at Alameda, 204 Bathroom. Priority: URGENT.", body)
	assert.Equal(t, "New ticket assigned: Leak <under> sink", input.Subject)
	assert.Equal(t, []string{"tech@example.com"}, input.To)
	assert.Contains(t, input.Body, "Leak &lt;under&gt; sink")
	assert.NotContains(t, input.Body, "<under>")

	raw, err := json.Marshal(input)
	require.NoError(t, err)
	assert.Equal(t, "Alameda", gjson.GetBytes(raw, "from-name").String())
}

func TestAssignmentEmailDefaultsToSpanish(t *testing.T) {
	e := AssignmentEmail{
		Ticket:   &models.Ticket{Title: "Bombilla", Area: "Pasillo", Category: types.CATEGORY_ELECTRICAL, Priority: types.PRIORITY_LOW},
		Assignee: &models.User{Email: "t@example.com"},
	}
	input, title, _, err := e.Build("m@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ticket asignado", title)
	assert.Equal(t, "Nuevo ticket asignado: Bombilla", input.Subject)
}
