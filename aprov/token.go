package aprov

import (
	"net/http"
	"sync"
)

// Token implements the 'Provider' interface using a JWT sent as a bearer token, the token may be rotated at runtime.
type Token struct {
	UserAgent string

	lock  sync.RWMutex
	token string
}

var _ Provider = (*Token)(nil)

// NewToken returns a provider which authenticates using the given JWT.
func NewToken(token, userAgent string) *Token {
	return &Token{UserAgent: userAgent, token: token}
}

// SetToken replaces the token used to authenticate subsequent requests.
func (t *Token) SetToken(token string) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.token = token
}

func (t *Token) SetAuth(_ string, req *http.Request) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if t.token == "" {
		return
	}

	req.Header.Set("Authorization", "bearer "+t.token)
}

func (t *Token) GetUserAgent() string {
	return t.UserAgent
}
