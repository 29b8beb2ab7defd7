package identity

import (
	"context"
	"errors"
)

// Static is a canned provider for tests and the dev backend. Login
// flips it to authenticated unless LoginErr is set.
type Static struct {
	ID            string
	Authenticated bool
	LoginErr      error
	LogoutErr     error

	Logins  int
	Logouts int
}

func (s *Static) IsAuthenticated(context.Context) (bool, error) {
	return s.Authenticated, nil
}

func (s *Static) Login(_ context.Context, _ Options) error {
	s.Logins++
	if s.LoginErr != nil {
		return s.LoginErr
	}
	s.Authenticated = true
	return nil
}

func (s *Static) Logout(context.Context) error {
	s.Logouts++
	if s.LogoutErr != nil {
		return s.LogoutErr
	}
	s.Authenticated = false
	return nil
}

func (s *Static) IdentityID(context.Context) (string, error) {
	if !s.Authenticated {
		return "", errors.New("not authenticated")
	}
	return s.ID, nil
}

var _ Provider = (*Static)(nil)
