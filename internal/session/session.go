package session

import (
	"context"
	"net/http"
	"time"

	"github.com/anonto42/twittor/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const contextKey = "session"

// Options configures the session cookie and lifetimes.
type Options struct {
	CookieName  string
	TTL         time.Duration
	RememberTTL time.Duration
	Secure      bool
}

// Manager loads a Session for every request and writes it back afterwards.
type Manager struct {
	store Store
	opts  Options
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "twittor_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = opts.TTL
	}
	return &Manager{store: store, opts: opts}
}

// Session is the per-request view of the stored session data.
type Session struct {
	mgr       *Manager
	c         echo.Context
	id        string
	data      Data
	dirty     bool
	destroyed bool
	stale     []string // ids replaced by Login, deleted on commit
}

// Middleware attaches the request's Session to the echo context.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			s := &Session{mgr: m, c: c}

			if cookie, err := c.Cookie(m.opts.CookieName); err == nil && cookie.Value != "" {
				data, err := m.store.Load(ctx, cookie.Value)
				if err != nil {
					logger.Log.Warn("session load failed", zap.Error(err))
				}
				if data != nil {
					s.id = cookie.Value
					s.data = *data
				}
			}

			c.Set(contextKey, s)
			err := next(c)
			m.commit(ctx, s)
			return err
		}
	}
}

func (m *Manager) commit(ctx context.Context, s *Session) {
	for _, id := range s.stale {
		if err := m.store.Delete(ctx, id); err != nil {
			logger.Log.Warn("session delete failed", zap.Error(err))
		}
	}
	if s.destroyed {
		if s.id != "" {
			if err := m.store.Delete(ctx, s.id); err != nil {
				logger.Log.Warn("session delete failed", zap.Error(err))
			}
		}
		return
	}
	if !s.dirty || s.id == "" {
		return
	}
	if err := m.store.Save(ctx, s.id, &s.data, m.ttl(s.data.Remember)); err != nil {
		logger.Log.Error("session save failed", zap.Error(err))
	}
}

func (m *Manager) ttl(remember bool) time.Duration {
	if remember {
		return m.opts.RememberTTL
	}
	return m.opts.TTL
}

// Get returns the request's Session. Outside the middleware it returns a detached,
// empty session whose changes are discarded.
func Get(c echo.Context) *Session {
	if s, ok := c.Get(contextKey).(*Session); ok && s != nil {
		return s
	}
	return &Session{c: c}
}

// UserID is the logged-in user's id, or zero.
func (s *Session) UserID() uint {
	return s.data.UserID
}

// Login binds the session to userID under a fresh id.
func (s *Session) Login(userID uint, remember bool) {
	if s.id != "" {
		s.stale = append(s.stale, s.id)
	}
	s.id = ""
	s.data.UserID = userID
	s.data.Remember = remember
	s.destroyed = false
	s.markDirty()
}

// Logout drops the session and expires the cookie.
func (s *Session) Logout() {
	s.data = Data{}
	s.destroyed = true
	if s.mgr != nil {
		s.c.SetCookie(&http.Cookie{
			Name:     s.mgr.opts.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.mgr.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// AddFlash queues a one-shot message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.data.Flashes = append(s.data.Flashes, msg)
	s.markDirty()
}

// Flashes returns and clears the queued messages.
func (s *Session) Flashes() []string {
	if len(s.data.Flashes) == 0 {
		return nil
	}
	flashes := s.data.Flashes
	s.data.Flashes = nil
	s.markDirty()
	return flashes
}

func (s *Session) markDirty() {
	s.dirty = true
	if s.id != "" || s.mgr == nil {
		return
	}
	s.id = uuid.NewString()
	cookie := &http.Cookie{
		Name:     s.mgr.opts.CookieName,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.mgr.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.data.Remember {
		cookie.MaxAge = int(s.mgr.opts.RememberTTL.Seconds())
	}
	s.c.SetCookie(cookie)
}
