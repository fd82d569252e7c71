package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
)

const tokenName = "pushbridge_channel"

var ErrBadToken = errors.New("middleware: invalid channel token")

// ChannelAuth issues and checks the signed token carried by the host channel
// URL. Tokens are bound to one process instance.
type ChannelAuth struct {
	codec    *securecookie.SecureCookie
	instance string
}

// NewChannelAuth signs tokens with secret. maxAge of zero disables expiry.
func NewChannelAuth(secret string, maxAge time.Duration) (*ChannelAuth, error) {
	if secret == "" {
		return nil, errors.New("middleware: empty channel secret")
	}
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	codec := securecookie.New([]byte(secret), nil)
	codec.MaxAge(int(maxAge / time.Second))
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &ChannelAuth{codec: codec, instance: hex.EncodeToString(nonce)}, nil
}

func (a *ChannelAuth) Issue() (string, error) {
	return a.codec.Encode(tokenName, a.instance)
}

func (a *ChannelAuth) Verify(token string) error {
	if token == "" {
		return ErrBadToken
	}
	var instance string
	if err := a.codec.Decode(tokenName, token, &instance); err != nil {
		return errors.Join(ErrBadToken, err)
	}
	if instance != a.instance {
		return ErrBadToken
	}
	return nil
}

// Channel rejects requests without a valid token in the "token" query
// parameter or a bearer Authorization header.
func Channel(auth *ChannelAuth, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.Verify(requestToken(r)); err != nil {
				logger.Warn("channel auth rejected", "remote", r.RemoteAddr, "err", err)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
