package mailer

import (
	"bytes"
	"hotelmaint/src/lib"
	"hotelmaint/src/models"
	"html/template"
)

var assignmentTmpl = template.Must(template.New("assignment").Parse(`<p>{{.Intro}}</p>
<p><strong>{{.Title}}</strong></p>
<p>{{.Body}}</p>
{{if .Link}}<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}`))

type AssignmentEmail struct {
	Ticket   *models.Ticket
	Hotel    *models.Hotel
	Assignee *models.User
	Link     string
}

// Build renders the assignment notice in the assignee's locale. The same
// text is used for the in-app notification.
func (e AssignmentEmail) Build(from string) (*lib.SendMailInput, string, string, error) {
	trans := lib.Translator(e.Assignee.Locale)
	hotel := ""
	if e.Hotel != nil {
		hotel = e.Hotel.Name
	}
	place := e.Ticket.Area
	if e.Ticket.Room != nil {
		place = e.Ticket.Room.Number + " " + place
	}
	title := lib.T(trans, "assignment_title")
	body := lib.T(trans, "assignment_body",
		e.Ticket.Title, string(e.Ticket.Category), hotel, place, string(e.Ticket.Priority))

	var buf bytes.Buffer
	if err := assignmentTmpl.Execute(&buf, map[string]string{
		"Intro": title,
		"Title": e.Ticket.Title,
		"Body":  body,
		"Link":  e.Link,
	}); err != nil {
		return nil, "", "", err
	}
	input := &lib.SendMailInput{
		From:     from,
		FromName: hotel,
		To:       []string{e.Assignee.Email},
		Subject:  lib.T(trans, "assignment_subject", e.Ticket.Title),
		Body:     buf.String(),
		Html:     true,
	}
	return input, title, body, nil
}
