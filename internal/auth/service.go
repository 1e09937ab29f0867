// Package auth implements login and logout for the job board. Accounts come in
// two flavors: verified accounts carry an auth-provider identifier and a bcrypt
// password hash and receive a durable session token at login; ad-hoc accounts
// were provisioned while the provider was unavailable and authenticate through
// the lightweight local-session path only.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobgrid.org/internal/audit"
	"jobgrid.org/internal/board"
	"jobgrid.org/internal/gate"
	"jobgrid.org/internal/session"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
// Callers must not distinguish the two.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// DefaultTokenTTL is the lifetime of durable session tokens.
const DefaultTokenTTL = 24 * time.Hour

// Service performs logins against the user store and records the resulting
// session state.
type Service struct {
	users    board.UserStore
	local    session.LocalStore
	events   *session.Broadcaster
	tokenTTL time.Duration
}

// NewService wires the login flow. events may be nil when no page listens for
// auth-state changes.
func NewService(users board.UserStore, local session.LocalStore, events *session.Broadcaster, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{users: users, local: local, events: events, tokenTTL: tokenTTL}
}

// LoginResult is the outcome of a successful login. Token is empty for ad-hoc
// accounts; those rely on the local session alone.
type LoginResult struct {
	User       *board.User
	Token      string
	RedirectTo string
}

// Login authenticates email/password and establishes both session forms: a
// durable token for verified accounts plus the local user-type/user-id pair for
// every account. RedirectTo is the landing page for the account's role.
func (s *Service) Login(ctx context.Context, email, password, clientID string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, board.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	var token string
	if user.AuthUserID != "" {
		// Verified account: the stored hash is authoritative.
		if err := VerifyPassword(user.PasswordHash, password); err != nil {
			return nil, ErrInvalidCredentials
		}
		token, err = session.GenerateToken(user.ID, string(user.UserType), s.tokenTTL)
		if err != nil {
			return nil, err
		}
	}

	// Both local fields are written together for every account, so a client
	// that loses its durable token still resolves through the ad-hoc path.
	if clientID != "" {
		sess := session.LocalSession{UserType: string(user.UserType), UserID: user.ID}
		if err := s.local.Save(ctx, clientID, sess); err != nil {
			return nil, err
		}
	}

	if s.events != nil {
		s.events.Publish(session.Event{Kind: session.SignedIn, UserID: user.ID})
	}
	audit.LogEvent(ctx, "auth.login", map[string]any{
		"user_id":   user.ID,
		"user_type": string(user.UserType),
		"durable":   token != "",
	})

	return &LoginResult{
		User:       user,
		Token:      token,
		RedirectTo: gate.HomeFor(user.UserType),
	}, nil
}

// Logout clears the local session and announces the sign-out so mounted pages
// drop their actor and navigate to login. Clearing an already-empty session is
// not an error.
func (s *Service) Logout(ctx context.Context, clientID string) error {
	if clientID != "" {
		if err := s.local.Clear(ctx, clientID); err != nil {
			return err
		}
	}
	if s.events != nil {
		s.events.Publish(session.Event{Kind: session.SignedOut})
	}
	audit.LogEvent(ctx, "auth.logout", nil)
	return nil
}

// Register creates an account. When hashPassword is true the account becomes a
// verified one: the password is hashed and an auth-provider identifier is
// assigned so future logins mint durable tokens.
func (s *Service) Register(ctx context.Context, user *board.User, password string) error {
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if user.Email == "" {
		return board.ErrInvalidInput
	}
	if !user.UserType.Known() {
		return board.ErrInvalidInput
	}
	if password != "" {
		hash, err := HashPassword(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		if user.AuthUserID == "" {
			user.AuthUserID = uuid.NewString()
		}
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	audit.LogEvent(ctx, "auth.register", map[string]any{
		"user_id":   user.ID,
		"user_type": string(user.UserType),
	})
	return nil
}
