package session

import (
	"net/http"

	chatservice "github.com/zhouzirui/cs-buddy/internal/service/chat"
)

// CookieName carries the session id between interactions.
const CookieName = "csbuddy_session"

// IDFromRequest returns the session id the browser sent, if any.
func IDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetCookie binds the browser to session id.
func SetCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// Acquire resolves the request's session, creating it on first interaction,
// and refreshes the cookie. It must run before anything is written to w.
func Acquire(w http.ResponseWriter, r *http.Request, store *chatservice.Store) (*chatservice.Session, func()) {
	sess, release := store.Acquire(IDFromRequest(r))
	SetCookie(w, r, sess.ID)
	return sess, release
}
