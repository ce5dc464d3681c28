package services

import (
	"errors"
	"strings"
	"time"

	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/config"
	"github.com/bugpredictor/database"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/lib/mailer"
	"github.com/bugpredictor/logger"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/repositories"
	"github.com/bugpredictor/utils"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AuthService handles registration, login, sessions and password recovery
type AuthService struct {
	cfg      config.AuthConfig
	baseURL  string
	users    *repositories.UserRepository
	projects *repositories.ProjectRepository
	tokens   *repositories.TokenRepository
	mailer   Mailer
	now      func() time.Time
}

// NewAuthService creates a new auth service instance
func NewAuthService(cfg config.AuthConfig, baseURL string, m Mailer) *AuthService {
	return &AuthService{
		cfg:      cfg,
		baseURL:  strings.TrimRight(baseURL, "/"),
		users:    repositories.NewUserRepository(),
		projects: repositories.NewProjectRepository(),
		tokens:   repositories.NewTokenRepository(),
		mailer:   m,
		now:      time.Now,
	}
}

// RegisterOwner creates a project and its unverified owner, then mails a verification link
func (s *AuthService) RegisterOwner(req dto.RegisterOwnerRequest) (*models.User, error) {
	email := utils.NormalizeEmail(req.Email)
	username := trimmed(req.Username)

	fields := passwordErrors(req.Password1, req.Password2, "password1", "password2")
	if trimmed(req.ProjectName) == "" {
		fields["projectName"] = "this field is required"
	}
	if err := checkIdentity(s.users, fields, username, email); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	hashedPassword, err := utils.HashPassword(req.Password1)
	if err != nil {
		return nil, internal(err)
	}

	project := models.Project{
		Name:        trimmed(req.ProjectName),
		Description: trimmed(req.ProjectDescription),
	}
	user := models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		FullName: trimmed(req.FullName),
		Role:     models.RoleProjectOwner,
		Verified: false,
	}

	var rawToken string
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.projects.Create(tx, &project); err != nil {
			return err
		}
		user.ProjectID = &project.ID
		if err := s.users.Create(tx, &user); err != nil {
			return err
		}
		token, err := s.issueToken(tx, user.ID, models.TokenVerifyEmail, s.cfg.VerifyTTL)
		rawToken = token
		return err
	})
	if err != nil {
		return nil, internal(err)
	}

	sendMail(s.mailer, user.Email, "Confirm your email address", mailer.TemplateVerifyEmail, map[string]string{
		"FullName":    displayName(user),
		"ProjectName": project.Name,
		"Link":        s.baseURL + "/api/v1/auth/verify?token=" + rawToken,
		"ExpiresIn":   s.cfg.VerifyTTL.String(),
	})

	logger.Info("Registered project %s with owner %s", project.ID, user.Username)
	return &user, nil
}

// VerifyEmail consumes a verification token and marks its user verified
func (s *AuthService) VerifyEmail(rawToken string) error {
	token, err := s.usableToken(models.TokenVerifyEmail, rawToken)
	if err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.consume(tx, token); err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", token.UserID).Update("verified", true).Error
	})
	if errors.Is(err, errTokenSpent) {
		return invalidLink()
	}
	if err != nil {
		return internal(err)
	}
	return nil
}

// Login authenticates a user by username or email and returns a token
func (s *AuthService) Login(req dto.LoginRequest) (*dto.AuthResponse, error) {
	login := trimmed(req.Login)
	if strings.Contains(login, "@") {
		login = utils.NormalizeEmail(login)
	}

	user, err := s.users.FindByLogin(login)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.Newf(apperrors.ErrUnauthorized, "invalid login or password")
		}
		return nil, internal(err)
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.Newf(apperrors.ErrUnauthorized, "invalid login or password")
	}

	if !user.Verified {
		return nil, apperrors.Newf(apperrors.ErrForbidden, "email address has not been verified")
	}

	token, expiresAt, err := s.GenerateToken(user)
	if err != nil {
		return nil, internal(err)
	}

	return &dto.AuthResponse{
		Token:     token,
		User:      dto.NewUserResponse(user),
		ExpiresAt: expiresAt,
	}, nil
}

// GenerateToken generates a new JWT token for a user
func (s *AuthService) GenerateToken(user models.User) (string, time.Time, error) {
	if s.cfg.JWTSecret == "" {
		return "", time.Time{}, errors.New("JWT secret is not configured")
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := dto.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims if valid
func (s *AuthService) ValidateToken(tokenString string) (*dto.TokenClaims, error) {
	if s.cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &dto.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*dto.TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Authenticate resolves a token to the current user
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrUnauthorized, "invalid or expired token")
	}

	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.Newf(apperrors.ErrUnauthorized, "user no longer exists")
		}
		return nil, internal(err)
	}
	return &user, nil
}

// UpdateProfile changes the full name of user
func (s *AuthService) UpdateProfile(user *models.User, req dto.UpdateProfileRequest) (models.User, error) {
	updated := *user
	updated.FullName = trimmed(req.FullName)
	if err := s.users.UpdateFields(&updated, "full_name"); err != nil {
		return models.User{}, internal(err)
	}
	return updated, nil
}

// ChangePassword replaces the password of user after checking the old one
func (s *AuthService) ChangePassword(user *models.User, req dto.ChangePasswordRequest) error {
	if !utils.CheckPassword(user.Password, req.OldPassword) {
		return apperrors.Validation("oldPassword", "your old password was entered incorrectly")
	}
	if fields := passwordErrors(req.NewPassword1, req.NewPassword2, "newPassword1", "newPassword2"); len(fields) > 0 {
		return apperrors.ValidationFields(fields)
	}
	return s.setPassword(user, req.NewPassword1)
}

// RequestPasswordReset mails a reset link when email belongs to a user.
// Unknown addresses are ignored so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.users.FindByEmail(utils.NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return internal(err)
	}

	if err := s.tokens.InvalidateForUser(user.ID, models.TokenPasswordReset, s.now()); err != nil {
		return internal(err)
	}
	rawToken, err := s.issueToken(nil, user.ID, models.TokenPasswordReset, s.cfg.ResetTTL)
	if err != nil {
		return internal(err)
	}

	sendMail(s.mailer, user.Email, "Reset your password", mailer.TemplatePasswordReset, map[string]string{
		"FullName":  displayName(user),
		"Link":      s.baseURL + "/reset-password?token=" + rawToken,
		"ExpiresIn": s.cfg.ResetTTL.String(),
	})
	return nil
}

// ConfirmPasswordReset sets a new password using a mailed reset token
func (s *AuthService) ConfirmPasswordReset(req dto.PasswordResetConfirmRequest) error {
	if fields := passwordErrors(req.Password1, req.Password2, "password1", "password2"); len(fields) > 0 {
		return apperrors.ValidationFields(fields)
	}

	token, err := s.usableToken(models.TokenPasswordReset, req.Token)
	if err != nil {
		return err
	}

	hashed, err := utils.HashPassword(req.Password1)
	if err != nil {
		return internal(err)
	}

	// Token and password change commit together
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.consume(tx, token); err != nil {
			return err
		}
		return s.users.SetPassword(tx, token.UserID, hashed)
	})
	if errors.Is(err, errTokenSpent) {
		return invalidLink()
	}
	if err != nil {
		return internal(err)
	}
	return nil
}

var errTokenSpent = errors.New("token already used")

func (s *AuthService) consume(tx *gorm.DB, token models.UserToken) error {
	consumed, err := s.tokens.Consume(tx, token.ID, s.now())
	if err != nil {
		return err
	}
	if !consumed {
		return errTokenSpent
	}
	return nil
}

func invalidLink() *apperrors.AppError {
	return apperrors.Validation("token", "the link is invalid or has expired")
}

func (s *AuthService) setPassword(user *models.User, password string) error {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return internal(err)
	}
	user.Password = hashed
	if err := s.users.UpdateFields(user, "password"); err != nil {
		return internal(err)
	}
	return nil
}

// checkIdentity adds duplicate username and email messages to fields
func checkIdentity(users *repositories.UserRepository, fields map[string]string, username, email string) error {
	taken, err := users.UsernameTaken(username)
	if err != nil {
		return internal(err)
	}
	if taken {
		fields["username"] = "a user with that username already exists"
	}

	taken, err = users.EmailTaken(email, "")
	if err != nil {
		return internal(err)
	}
	if taken {
		fields["email"] = "a user with that email already exists"
	}
	return nil
}

func (s *AuthService) issueToken(tx *gorm.DB, userID string, kind models.TokenKind, ttl time.Duration) (string, error) {
	raw, hash, err := utils.NewOpaqueToken()
	if err != nil {
		return "", err
	}
	token := models.UserToken{
		UserID:    userID,
		Kind:      kind,
		TokenHash: hash,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.tokens.Create(tx, &token); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *AuthService) usableToken(kind models.TokenKind, rawToken string) (models.UserToken, error) {
	if rawToken == "" {
		return models.UserToken{}, invalidLink()
	}

	token, err := s.tokens.FindByHash(kind, utils.HashToken(rawToken))
	if err != nil {
		if isNotFound(err) {
			return models.UserToken{}, invalidLink()
		}
		return models.UserToken{}, internal(err)
	}
	if !token.Usable(s.now()) {
		return models.UserToken{}, invalidLink()
	}
	return token, nil
}

// sendMail queues a message, logging failures so the request still succeeds
func sendMail(m Mailer, to, subject, template string, data interface{}) {
	if m == nil {
		return
	}
	if err := m.Send(to, subject, template, data); err != nil {
		logger.Error("Failed to queue %q for %s: %v", subject, to, err)
	}
}

func displayName(u models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
