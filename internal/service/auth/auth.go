package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
	"github.com/nkiryanov/bankledger/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type otpManager interface {
	Issue(ctx context.Context, identity string, purpose models.OtpPurpose) (string, error)
	Verify(ctx context.Context, identity string, purpose models.OtpPurpose, code string) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// Auth service
// Login is two step: password check issues login otp, otp check issues access token
type AuthService struct {
	// Manager to issue and parse access tokens
	tokens *tokenmanager.TokenManager

	// hasher to compare user passwords
	hasher PasswordHasher

	userRepo repository.UserRepo
	otp      otpManager
	recorder auditRecorder

	// Hash compared against when user is unknown, so response time does not reveal registered emails
	dummyHash string
}

func NewService(hasher PasswordHasher, tokens *tokenmanager.TokenManager, userRepo repository.UserRepo, otp otpManager, recorder auditRecorder) (*AuthService, error) {
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if tokens == nil || userRepo == nil || otp == nil || recorder == nil {
		return nil, errors.New("auth service dependencies must not be nil")
	}

	dummyHash, err := hasher.Hash("not-a-password")
	if err != nil {
		return nil, fmt.Errorf("can't prepare hasher. Err: %w", err)
	}

	return &AuthService{
		tokens:    tokens,
		hasher:    hasher,
		userRepo:  userRepo,
		otp:       otp,
		recorder:  recorder,
		dummyHash: dummyHash,
	}, nil
}

// Login checks password and sends login otp to the user email
func (s *AuthService) Login(ctx context.Context, email string, password string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		return apperrors.ErrInvalidCredentials
	case err != nil:
		return fmt.Errorf("can't get user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return apperrors.ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return apperrors.ErrUserInactive
	}

	if _, err := s.otp.Issue(ctx, user.Email, models.OtpPurposeLogin); err != nil {
		return fmt.Errorf("can't issue login otp. Err: %w", err)
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: &user.ID,
		Action:  models.AuditLoginOtpRequested,
		Details: map[string]any{"email": user.Email},
	})

	return nil
}

// VerifyLogin consumes login otp and returns access token
func (s *AuthService) VerifyLogin(ctx context.Context, email string, code string) (models.IssuedToken, models.User, error) {
	email = normalizeEmail(email)

	if err := s.otp.Verify(ctx, email, models.OtpPurposeLogin, code); err != nil {
		return models.IssuedToken{}, models.User{}, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return models.IssuedToken{}, user, err
	}
	if user.Status != models.UserStatusActive {
		return models.IssuedToken{}, user, apperrors.ErrUserInactive
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return token, user, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: &user.ID,
		Action:  models.AuditLoginSuccessful,
		Details: map[string]any{"email": user.Email},
	})

	return token, user, nil
}

// RequestOtp sends otp for purpose to the actor's own email
func (s *AuthService) RequestOtp(ctx context.Context, actor models.Actor, purpose models.OtpPurpose) error {
	if purpose == models.OtpPurposeTest {
		return fmt.Errorf("otp purpose %q: %w", purpose, apperrors.ErrInvalidValue)
	}

	if _, err := s.otp.Issue(ctx, actor.Email, purpose); err != nil {
		return fmt.Errorf("can't issue otp. Err: %w", err)
	}

	return nil
}

// Authenticate resolves access token to actor
// Role is taken from the database, so demoted or suspended users lose access at once
func (s *AuthService) Authenticate(ctx context.Context, access string) (models.Actor, error) {
	claims, err := s.tokens.ParseAccess(access)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.Actor{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.Actor{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	if user.Status != models.UserStatusActive {
		return models.Actor{}, apperrors.ErrUserInactive
	}

	return user.Actor(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
