package courtroom

import (
	"context"
	"fmt"
	"sync"

	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// Session tracks which party the human controls for one case. A role is
// locked the moment a user-authored entry exists; after that the
// established role always wins and requests for another role are
// overridden rather than rejected.
type Session struct {
	api API
	cnr string

	mu     sync.Mutex
	c      *models.Case
	role   string
	locked bool
}

// NewSession creates a session for the given case
func NewSession(api API, cnr string) *Session {
	return &Session{api: api, cnr: cnr}
}

// Load refetches the case and derives the effective role state from it
func (s *Session) Load(ctx context.Context) error {
	c, err := s.api.Case(ctx, s.cnr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.c = c
	s.role, s.locked = establishedRole(c)
	return nil
}

// AssignRole chooses the party the human will argue for. If a different
// role is already established the request succeeds and returns the
// established role; the caller must display the returned role, not the
// requested one.
func (s *Session) AssignRole(ctx context.Context, role string) (string, error) {
	if role != models.RolePlaintiff && role != models.RoleDefendant {
		return "", fmt.Errorf("%w: role must be %q or %q", ErrValidation, models.RolePlaintiff, models.RoleDefendant)
	}

	s.mu.Lock()
	if s.locked {
		established := s.role
		s.mu.Unlock()
		return established, nil
	}
	s.mu.Unlock()

	resp, err := s.api.AssignRole(ctx, s.cnr, role)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = resp.UserRole
	s.locked = resp.RoleLocked
	return resp.UserRole, nil
}

// Role returns the role currently in effect, which may be empty before
// assignment
func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// Locked reports whether the role can still change
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Case returns the last loaded snapshot; possibly stale, never
// authoritative
func (s *Session) Case() *models.Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c
}

// CNR returns the case identifier this session operates on
func (s *Session) CNR() string {
	return s.cnr
}

// markLocked records that the server has locked the roles, typically
// after a first successful submission
func (s *Session) markLocked(role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
	s.locked = true
}

// establishedRole derives the effective role from a case snapshot. The
// persisted lock flag is preferred; older records without it fall back to
// scanning for user-authored entries.
func establishedRole(c *models.Case) (string, bool) {
	if c.RoleLocked {
		return c.UserRole, true
	}
	for _, arg := range c.PlaintiffArguments {
		if arg.UserID != "" {
			return models.RolePlaintiff, true
		}
	}
	for _, arg := range c.DefendantArguments {
		if arg.UserID != "" {
			return models.RoleDefendant, true
		}
	}
	return c.UserRole, false
}
