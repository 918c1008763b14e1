package aprov

import "net/http"

// Static implements the 'Provider' interface using HTTP basic authentication with static credentials.
type Static struct {
	UserAgent, Username, Password string
}

var _ Provider = (*Static)(nil)

// SetAuth sets basic authentication on the given request; requests are sent unauthenticated when no username is set.
func (s *Static) SetAuth(_ string, req *http.Request) {
	if s.Username == "" {
		return
	}

	req.SetBasicAuth(s.Username, s.Password)
}

func (s *Static) GetUserAgent() string {
	return s.UserAgent
}
