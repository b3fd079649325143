package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
	"github.com/nerve-health/referral/backend/internal/infrastructure/observability"
	"github.com/nerve-health/referral/backend/pkg/auth"
	apperrors "github.com/nerve-health/referral/backend/pkg/errors"
)

var hospitalCodePattern = regexp.MustCompile(`^[A-Z0-9-]{4,20}$`)

// RegisterInput is the payload for creating a hospital admin account.
type RegisterInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	HospitalID   string `json:"hospital_id"`
	HospitalCode string `json:"hospital_code"`
}

// LoginInput authenticates by hospital code rather than email.
type LoginInput struct {
	HospitalCode string `json:"hospital_code"`
	Password     string `json:"password"`
}

// AuthResult carries the issued token and the authenticated account.
type AuthResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

// AuthService manages staff accounts. Each hospital gets exactly one
// admin account, created against an existing hospital record.
type AuthService struct {
	users     repositories.UserRepository
	hospitals repositories.HospitalRepository
	passwords *auth.PasswordManager
	tokens    *auth.TokenManager
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, hospitals repositories.HospitalRepository, passwords *auth.PasswordManager, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:     users,
		hospitals: hospitals,
		passwords: passwords,
		tokens:    tokens,
	}
}

// Register creates the admin account for a hospital and signs it in.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResult, error) {
	ctx, span := observability.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	if err := s.validateRegistration(input); err != nil {
		return nil, err
	}

	hospital, err := s.hospitals.GetByID(ctx, input.HospitalID)
	if err != nil {
		return nil, apperrors.NewValidationError("hospital not found: " + input.HospitalID)
	}

	if existing, err := s.users.GetByHospitalID(ctx, input.HospitalID); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("hospital already has an admin account")
	}
	if existing, err := s.users.GetByEmail(ctx, strings.ToLower(input.Email)); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("email already registered")
	}

	code := input.HospitalCode
	if code == "" {
		code, err = s.generateHospitalCode(ctx, hospital.Name)
		if err != nil {
			return nil, err
		}
	} else if existing, err := s.users.GetByHospitalCode(ctx, code); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("hospital code already in use")
	}

	hash, err := s.passwords.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	user := &entities.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		Name:         input.Name,
		Role:         entities.RoleHospitalAdmin,
		HospitalID:   input.HospitalID,
		HospitalCode: code,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("user_id", user.ID).
		Str("hospital_id", user.HospitalID).
		Msg("registered hospital admin")

	return s.issueToken(ctx, user)
}

// Login authenticates a hospital admin by hospital code and password.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResult, error) {
	ctx, span := observability.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	if input == nil || input.HospitalCode == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("hospital code and password are required")
	}

	user, err := s.users.GetByHospitalCode(ctx, input.HospitalCode)
	if err != nil {
		// Same error for unknown code and bad password
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}

	ok, err := s.passwords.VerifyPassword(user.PasswordHash, input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to verify password", err)
	}
	if !ok {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}

	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("account is disabled")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("user_id", user.ID).
			Msg("failed to record last login")
	}

	return s.issueToken(ctx, user)
}

// CurrentUser resolves the account behind a validated token.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("account not found")
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("account is disabled")
	}
	return user, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *entities.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID, user.HospitalID, user.HospitalCode, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) validateRegistration(input *RegisterInput) error {
	if input == nil {
		return apperrors.NewValidationError("registration payload is required")
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return apperrors.NewValidationError("a valid email is required")
	}
	if len(input.Password) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters")
	}
	if input.Name == "" {
		return apperrors.NewValidationError("name is required")
	}
	if input.HospitalID == "" {
		return apperrors.NewValidationError("hospital_id is required")
	}
	// An empty code means one gets generated from the hospital name.
	if input.HospitalCode != "" && !hospitalCodePattern.MatchString(input.HospitalCode) {
		return apperrors.NewValidationError("hospital code must be 4-20 characters of A-Z, 0-9 or hyphen")
	}
	return nil
}

// generateHospitalCode derives a login code from the hospital name plus
// a random suffix, retrying on the rare collision.
func (s *AuthService) generateHospitalCode(ctx context.Context, hospitalName string) (string, error) {
	prefix := codePrefix(hospitalName)

	for attempt := 0; attempt < 5; attempt++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
		code := prefix + "-" + suffix
		if existing, err := s.users.GetByHospitalCode(ctx, code); err != nil || existing == nil {
			return code, nil
		}
	}
	return "", apperrors.NewInternalError("failed to generate a unique hospital code", nil)
}

// codePrefix keeps the first few alphanumeric characters of the name,
// uppercased, falling back to "HOSP" for names with none.
func codePrefix(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 6 {
				break
			}
		}
	}
	if b.Len() < 2 {
		return "HOSP"
	}
	return b.String()
}
