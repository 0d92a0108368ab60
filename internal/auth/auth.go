package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/court-booking/internal/domain/user"
)

type ctxKey string

const sessionKey ctxKey = "session"

const (
	cookieName = "courtbook_session"
	sessionTTL = 14 * 24 * time.Hour
)

// Store issues and verifies signed, encrypted session cookies.
type Store struct {
	sc *securecookie.SecureCookie
}

func NewStore(hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	// keep cookie small and secure
	sc.MaxAge(int(sessionTTL.Seconds()))
	return &Store{sc: sc}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}

// Session identifies a browser. Guests get a session with RoleUser and no username.
type Session struct {
	ID       string
	Username string
	Role     user.Role
}

func (s Session) IsAdmin() bool { return s.Role == user.RoleAdmin }

// NewSession starts a fresh session with a random id.
func NewSession(username string, role user.Role) Session {
	return Session{ID: uuid.NewString(), Username: username, Role: role}
}

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, sess Session) error {
	val := map[string]string{"sid": sess.ID, "user": sess.Username, "role": string(sess.Role)}
	encoded, err := s.sc.Encode(cookieName, val)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil, // ok for local http; secure in https
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	val := map[string]string{}
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	role, err := user.ParseRole(val["role"])
	if err != nil || val["sid"] == "" {
		return Session{}, false
	}
	return Session{ID: val["sid"], Username: val["user"], Role: role}, true
}

// RequireRole lets a request through when its session holds one of roles.
// Browsers are redirected to /login; API clients get a bare status code.
func (s *Store) RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := s.GetSession(r)
			if !ok {
				deny(w, r, http.StatusUnauthorized)
				return
			}
			if !hasRole(sess.Role, roles) {
				deny(w, r, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func hasRole(r user.Role, roles []user.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, want := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func deny(w http.ResponseWriter, r *http.Request, code int) {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/rpc/") {
		http.Error(w, http.StatusText(code), code)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionKey).(Session)
	return sess, ok
}

// RequireAPIKey guards machine-to-machine endpoints with a shared key in X-API-Key.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" || !secureEq(r.Header.Get("X-API-Key"), key) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secureEq(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
