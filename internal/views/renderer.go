// Package views renders the HTML pages and account emails from embedded templates.
package views

import (
	"crypto/md5"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/labstack/echo/v4"
)

//go:embed templates
var templateFS embed.FS

// Page is the data every page template receives.
type Page struct {
	Title       string
	CurrentUser *models.User
	Flashes     []string
	CSRFToken   string
	Errors      map[string]string
	Form        interface{}
	Feed        *FeedView
	Profile     *ProfileView
	Message     string
	Status      int
}

// FeedView is a page of posts with ready-made navigation links.
type FeedView struct {
	Posts   []models.Post
	PrevURL string
	NextURL string
	Total   int64
}

type ProfileView struct {
	User        *models.User
	Posts       int64
	Followers   int64
	Following   int64
	IsFollowing bool
	IsOwner     bool
}

// Error returns the message for a form field, or "".
func (p *Page) Error(field string) string {
	return p.Errors[field]
}

// Renderer implements echo.Renderer. Each page is parsed together with the base layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"avatar":  Avatar,
	"timeago": timeAgo,
}

func NewRenderer() (*Renderer, error) {
	base, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/feed.html")
	if err != nil {
		return nil, fmt.Errorf("parse base layout: %w", err)
	}

	names, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		layout, err := base.Clone()
		if err != nil {
			return nil, err
		}
		page, err := layout.ParseFS(templateFS, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[path.Base(name)] = page
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	page, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("views: unknown template %q", name)
	}
	return page.ExecuteTemplate(w, "base.html", data)
}

// Avatar returns the Gravatar identicon URL for email at the given pixel size.
func Avatar(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(sum[:]), size)
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
