package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	authdomain "github.com/AlibekovAA/toggle-task/internal/auth/domain"
	authrepo "github.com/AlibekovAA/toggle-task/internal/auth/repository"
	"github.com/AlibekovAA/toggle-task/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/toggle-task/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/toggle-task/internal/common/errors"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/common/session"
	"github.com/AlibekovAA/toggle-task/internal/common/validation"
	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
	userrepo "github.com/AlibekovAA/toggle-task/internal/user/repository"
)

type AuthServiceDeps struct {
	Users       userrepo.Repository
	Revoked     authrepo.RevokedSessionRepository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Sessions    *session.Issuer
	Validator   *validation.Validator
	Clock       clock.Clock
	Log         *logger.Logger
}

type AuthService struct {
	users       userrepo.Repository
	revoked     authrepo.RevokedSessionRepository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	sessions    *session.Issuer
	validator   *validation.Validator
	clock       clock.Clock
	log         *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	c := deps.Clock
	if c == nil {
		c = clock.NewRealClock()
	}
	return &AuthService{
		users:       deps.Users,
		revoked:     deps.Revoked,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		sessions:    deps.Sessions,
		validator:   v,
		clock:       c,
		log:         deps.Log,
	}
}

type RegisterInput struct {
	Username             string `form:"username" validate:"required,min=3,max=32,username"`
	Password             string `form:"password" validate:"required,min=8,password"`
	PasswordConfirmation string `form:"password_confirmation"`
}

type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// AuthResult is a freshly established session.
type AuthResult struct {
	Token    string
	Identity session.Identity
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if input.Password != input.PasswordConfirmation {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_password_mismatch",
		}).Warn("register failed: password confirmation mismatch")
		recordRegistration("validation_failed")
		return AuthResult{}, commonerrors.ErrPasswordMismatch.WithField("password_confirmation")
	}

	if err := s.validator.Struct(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		recordRegistration("validation_failed")
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		recordRegistration("error")
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		recordRegistration("error")
		return AuthResult{}, fmt.Errorf("generate user id: %w", err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			recordRegistration("conflict")
			return AuthResult{}, commonerrors.ErrUsernameTaken.WithField("username")
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		recordRegistration("error")
		return AuthResult{}, err
	}

	result, err := s.issue(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "register_session_failed",
		}).Errorf("register failed: session issue error: %v", err)
		recordRegistration("error")
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")
	recordRegistration("success")

	return result, nil
}

// Login never reveals whether the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if err := s.validator.Struct(input); err != nil {
		recordLogin("invalid_credentials")
		return AuthResult{}, commonerrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			// Pay the same hashing cost as a wrong password.
			_ = s.hasher.Compare(s.dummyPasswordHash(), input.Password)
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			recordLogin("invalid_credentials")
			return AuthResult{}, commonerrors.ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		recordLogin("error")
		return AuthResult{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		recordLogin("invalid_credentials")
		return AuthResult{}, commonerrors.ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "login_session_failed",
		}).Errorf("login failed: session issue error: %v", err)
		recordLogin("error")
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")
	recordLogin("success")

	return result, nil
}

// dummyPasswordHash is hashed once at the configured cost and compared
// against for unknown usernames.
func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("toggle-task-unknown-user-0")
		if err != nil {
			s.log.Errorf("failed to prepare dummy password hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Logout revokes the session until it would have expired on its own.
func (s *AuthService) Logout(ctx context.Context, id session.Identity) error {
	if id.SessionID == "" {
		return commonerrors.ErrInvalidSession
	}

	err := s.revoked.Revoke(ctx, authdomain.RevokedSession{
		JTI:       id.SessionID,
		UserID:    id.UserID,
		ExpiresAt: id.ExpiresAt,
		RevokedAt: s.clock.Now(),
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": id.UserID,
			"action":  "logout_failed",
		}).Errorf("logout failed: %v", err)
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": id.UserID,
		"action":  "logout_success",
	}).Info("logout success")
	recordSessionRevoked()
	return nil
}

// Authenticate implements session.Authenticator.
func (s *AuthService) Authenticate(ctx context.Context, token string) (session.Identity, error) {
	id, err := s.sessions.Parse(token)
	if err != nil {
		recordSessionRejected("invalid")
		return session.Identity{}, commonerrors.ErrInvalidSession.WithCause(err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, id.SessionID, s.clock.Now())
	if err != nil {
		recordSessionRejected("lookup_failed")
		return session.Identity{}, err
	}
	if revoked {
		recordSessionRejected("revoked")
		return session.Identity{}, commonerrors.ErrInvalidSession
	}

	return id, nil
}

func (s *AuthService) issue(user userdomain.User) (AuthResult, error) {
	token, id, err := s.sessions.Issue(string(user.ID), user.Username)
	if err != nil {
		return AuthResult{}, err
	}
	recordSessionIssued()
	return AuthResult{Token: token, Identity: id}, nil
}
