// Package session holds the authenticated user for the lifetime of a login.
//
// A session is created when login or signup succeeds, replaced by onboarding when
// the backend returns an updated profile, and cleared at logout. Every other
// caller only reads it.
package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/blogai/internal/apiclient"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// CookieName names the signed cookie carrying the dashboard session.
const CookieName = "blogai_session"

const (
	keyUserName  = "user_name"
	keyUserEmail = "user_email"
	tokenMaxAge  = 60 * 60 * 24 * 7
)

// User is the profile shown across the dashboard.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewStore returns the cookie store backing sessions and flash notifications.
func NewStore(secret string, secure bool) sessions.Store {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   tokenMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// Middleware installs the session store on the engine.
func Middleware(store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(CookieName, store)
}

// Manager starts, reads and clears sessions.
type Manager struct {
	secure bool
}

// NewManager creates a Manager. secure controls the Secure flag of the auth-token cookie.
func NewManager(secure bool) *Manager {
	return &Manager{secure: secure}
}

// Start records user as logged in and stores the backend token in the auth-token cookie.
func (m *Manager) Start(c *gin.Context, user User, token string) error {
	if err := m.save(c, user); err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(apiclient.TokenCookieName, token, tokenMaxAge, "/", "", m.secure, true)
	return nil
}

// Update replaces the stored profile without touching the token.
func (m *Manager) Update(c *gin.Context, user User) error {
	return m.save(c, user)
}

func (m *Manager) save(c *gin.Context, user User) error {
	sess := sessions.Default(c)
	sess.Set(keyUserName, strings.TrimSpace(user.Name))
	sess.Set(keyUserEmail, strings.TrimSpace(user.Email))
	return sess.Save()
}

// Current returns the logged in user, if any.
func (m *Manager) Current(c *gin.Context) (User, bool) {
	sess := sessions.Default(c)
	name, _ := sess.Get(keyUserName).(string)
	email, _ := sess.Get(keyUserEmail).(string)
	if name == "" && email == "" {
		return User{}, false
	}
	return User{Name: name, Email: email}, true
}

// Clear forgets the user and expires the auth-token cookie.
func (m *Manager) Clear(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Delete(keyUserName)
	sess.Delete(keyUserEmail)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(apiclient.TokenCookieName, "", -1, "/", "", m.secure, true)
	return sess.Save()
}

// Token returns the raw auth-token cookie of the request.
func Token(c *gin.Context) string {
	token, err := c.Cookie(apiclient.TokenCookieName)
	if err != nil {
		return ""
	}
	return token
}

// Context returns the request context carrying the caller's token for backend calls.
func Context(c *gin.Context) context.Context {
	return apiclient.WithToken(c.Request.Context(), Token(c))
}

const flashKey = "notifications"

// Notification is a transient toast shown once on the next rendered page.
type Notification struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

const (
	KindSuccess = "success"
	KindError   = "error"
)

// Notify queues a notification for the next page render.
func Notify(c *gin.Context, n Notification) {
	encoded, err := json.Marshal(n)
	if err != nil {
		return
	}
	sess := sessions.Default(c)
	sess.AddFlash(string(encoded), flashKey)
	if err := sess.Save(); err != nil {
		log.Printf("[SESSION] failed to save notification: %v", err)
	}
}

// Success queues a confirmation notification.
func Success(c *gin.Context, title, description string) {
	Notify(c, Notification{Kind: KindSuccess, Title: title, Description: description})
}

// Failure queues an error notification.
func Failure(c *gin.Context, title, description string) {
	Notify(c, Notification{Kind: KindError, Title: title, Description: description})
}

// Notifications drains the queued notifications.
func Notifications(c *gin.Context) []Notification {
	sess := sessions.Default(c)
	flashes := sess.Flashes(flashKey)
	if len(flashes) == 0 {
		return nil
	}
	if err := sess.Save(); err != nil {
		log.Printf("[SESSION] failed to drain notifications: %v", err)
	}

	items := make([]Notification, 0, len(flashes))
	for _, raw := range flashes {
		text, ok := raw.(string)
		if !ok {
			continue
		}
		var n Notification
		if err := json.Unmarshal([]byte(text), &n); err != nil {
			continue
		}
		items = append(items, n)
	}
	return items
}
