package utils

import (
	"fmt"
	"net/http"
	"time"

	"cafedir/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionKey = "session"
	userKey    = "current_user"
)

// Session wraps the claims of the current request's session cookie. Changes
// are written back by Manager.Save.
type Session struct {
	claims *Claims
	dirty  bool
}

func newSession(userID uint, flashes []string) *Session {
	return &Session{
		claims: &Claims{UserID: userID, CSRF: uuid.NewString(), Flashes: flashes},
		dirty:  true,
	}
}

func (s *Session) UserID() uint {
	return s.claims.UserID
}

func (s *Session) Authenticated() bool {
	return s.claims.UserID != 0
}

func (s *Session) CSRFToken() string {
	return s.claims.CSRF
}

func (s *Session) AddFlash(msg string) {
	s.claims.Flashes = append(s.claims.Flashes, msg)
	s.dirty = true
}

// Flashes returns pending flash messages and clears them.
func (s *Session) Flashes() []string {
	out := s.claims.Flashes
	if len(out) > 0 {
		s.claims.Flashes = nil
		s.dirty = true
	}
	return out
}

type Manager struct {
	signer   *Signer
	denylist Denylist
	cookie   string
	ttl      time.Duration
	secure   bool
}

type ManagerConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func NewManager(cfg ManagerConfig, denylist Denylist) *Manager {
	if denylist == nil {
		denylist = NewMemoryDenylist()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}
	return &Manager{
		signer:   NewSigner(cfg.Secret, "cafedir", cfg.TTL),
		denylist: denylist,
		cookie:   cfg.CookieName,
		ttl:      cfg.TTL,
		secure:   cfg.Secure,
	}
}

// load returns the session carried by the request cookie, or a fresh
// anonymous one when the cookie is missing, forged, expired or revoked.
func (m *Manager) load(c *gin.Context) *Session {
	raw, err := c.Cookie(m.cookie)
	if err != nil || raw == "" {
		return newSession(0, nil)
	}

	claims, err := m.signer.Parse(raw)
	if err != nil {
		return newSession(0, nil)
	}

	revoked, err := m.denylist.Revoked(c.Request.Context(), claims.ID)
	if err != nil {
		_ = c.Error(fmt.Errorf("check session revocation: %w", err))
		return newSession(0, nil)
	}
	if revoked {
		return newSession(0, nil)
	}
	return &Session{claims: claims}
}

// Save writes the session cookie when the session changed. It must run before
// the response body is written.
func (m *Manager) Save(c *gin.Context) error {
	s := CurrentSession(c)
	if s == nil || !s.dirty {
		return nil
	}

	token, err := m.signer.Sign(s.claims)
	if err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
	s.dirty = false
	return nil
}

// Login binds a new session to user, carrying over pending flashes.
func (m *Manager) Login(c *gin.Context, user *model.User) {
	var flashes []string
	if old := CurrentSession(c); old != nil {
		flashes = old.claims.Flashes
	}
	c.Set(sessionKey, newSession(user.ID, flashes))
	c.Set(userKey, user)
}

// Logout revokes the current session token and replaces it with an anonymous
// session.
func (m *Manager) Logout(c *gin.Context) error {
	old := CurrentSession(c)
	if old != nil && old.claims.ID != "" {
		// every token re-signed for this session shares its id, and none can
		// outlive a full ttl from now
		if err := m.denylist.Revoke(c.Request.Context(), old.claims.ID, time.Now().Add(m.ttl)); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}

	var flashes []string
	if old != nil {
		flashes = old.claims.Flashes
	}
	c.Set(sessionKey, newSession(0, flashes))
	c.Set(userKey, (*model.User)(nil))
	return nil
}

func CurrentSession(c *gin.Context) *Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

// CurrentUser returns the logged in user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
