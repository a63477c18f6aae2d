package views

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"

	"github.com/anonto42/twittor/backend/internal/models"
)

// Emails composes the text and HTML bodies of account emails.
type Emails struct {
	text *template.Template
	html *htmltemplate.Template
}

func NewEmails() (*Emails, error) {
	text, err := template.ParseFS(templateFS, "templates/email/*.txt")
	if err != nil {
		return nil, err
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/email/*.html")
	if err != nil {
		return nil, err
	}
	return &Emails{text: text, html: html}, nil
}

type activationData struct {
	Username string
	Link     string
}

type resetData struct {
	Username    string
	Link        string
	RequestLink string
}

func (e *Emails) Activation(user *models.User, link string) (string, string, error) {
	return e.render("user_activate", activationData{Username: user.Username, Link: link})
}

func (e *Emails) PasswordReset(user *models.User, link, requestLink string) (string, string, error) {
	return e.render("password_reset", resetData{Username: user.Username, Link: link, RequestLink: requestLink})
}

func (e *Emails) render(name string, data interface{}) (string, string, error) {
	var text, html bytes.Buffer
	if err := e.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return "", "", err
	}
	if err := e.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return "", "", err
	}
	return text.String(), html.String(), nil
}
