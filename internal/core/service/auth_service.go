package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

const tokenTypeBearer = "Bearer"

// AuthService implements registration and login.
type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	verifier *AuthenticationVerifier
	events   ports.AuthEventRecorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService wires the service. events may be nil, in which case no
// audit trail is recorded.
func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	events ports.AuthEventRecorder,
	log zerolog.Logger,
) *AuthService {
	if events == nil {
		events = discardRecorder{}
	}
	return &AuthService{
		users:    users,
		roles:    roles,
		hasher:   hasher,
		tokens:   tokens,
		verifier: NewAuthenticationVerifier(users, hasher),
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies the credential pair and issues a token for the username.
func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, ok, err := s.verifier.Verify(ctx, creds.Username, creds.Password)
	if err != nil {
		s.log.Error().Err(err).Str("username", creds.Username).Msg("credential verification failed")
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		s.record(domain.EventLoginFailed, creds.Username)
		s.log.Info().Str("username", creds.Username).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.record(domain.EventLoginSucceeded, user.Username)
	s.log.Info().Str("username", user.Username).Msg("login succeeded")
	return result, nil
}

// Register creates a new account holding the default role and issues a
// token for it. A token failure after the user was saved is reported as
// domain.ErrTokenIssuance; the account exists and can log in.
func (s *AuthService) Register(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidUser)
	}

	// 1. Username availability.
	exists, err := s.users.ExistsByUsername(ctx, creds.Username)
	if err != nil {
		return nil, fmt.Errorf("register: check username: %w", err)
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	// 2. Default role must have been seeded.
	role, err := s.roles.FindByName(ctx, domain.DefaultRole)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			s.log.Error().
				Str("role", string(domain.DefaultRole)).
				Msg("default role missing from role store, seed data has not been applied")
			return nil, fmt.Errorf("%w: role %s not found", domain.ErrConfiguration, domain.DefaultRole)
		}
		return nil, fmt.Errorf("register: resolve default role: %w", err)
	}

	// 3. Hash; the plaintext goes no further.
	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := domain.NewUser(creds.Username, hash, []domain.RoleName{role.Name}, s.now())
	if err != nil {
		// Inputs were checked above, so a rejection here points at bad role data.
		s.log.Error().Err(err).
			Str("role", string(role.Name)).
			Msg("role store returned an unusable default role")
		return nil, fmt.Errorf("%w: build user: %v", domain.ErrConfiguration, err)
	}

	// 4. Persist. Last point at which cancellation leaves nothing behind.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	created, err := s.users.Save(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, domain.ErrUsernameTaken
		}
		s.log.Error().Err(err).Str("username", creds.Username).Msg("failed to save user")
		return nil, fmt.Errorf("register: save user: %w", err)
	}

	s.record(domain.EventRegistered, created.Username)
	s.log.Info().Str("username", created.Username).Str("user_id", created.ID).Msg("user registered")

	// 5. Token.
	return s.issue(created)
}

// Profile returns the stored account for username.
func (s *AuthService) Profile(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(user.Username, user.Roles)
	if err != nil {
		s.log.Error().Err(err).Str("username", user.Username).Msg("token issuance failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenIssuance, err)
	}
	return &ports.AuthResult{
		Token:     token.Value,
		TokenType: tokenTypeBearer,
		ExpiresAt: token.ExpiresAt,
		Username:  user.Username,
	}, nil
}

func (s *AuthService) record(kind domain.AuthEventKind, username string) {
	s.events.Record(domain.AuthEvent{
		ID:         ulid.Make().String(),
		Kind:       kind,
		Username:   username,
		OccurredAt: s.now(),
	})
}

type discardRecorder struct{}

func (discardRecorder) Record(domain.AuthEvent) {}
