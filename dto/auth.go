package dto

import (
	"time"

	"github.com/bugpredictor/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents our custom JWT claims
type TokenClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest accepts a username or an email as login
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterOwnerRequest is the project owner self-registration form
type RegisterOwnerRequest struct {
	ProjectName        string `json:"projectName" binding:"required,max=255"`
	ProjectDescription string `json:"projectDescription"`
	Username           string `json:"username" binding:"required,max=150"`
	Email              string `json:"email" binding:"required,email"`
	FullName           string `json:"fullName" binding:"max=255"`
	Password1          string `json:"password1" binding:"required"`
	Password2          string `json:"password2" binding:"required"`
}

// AuthResponse represents the response after authentication
type AuthResponse struct {
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type UpdateProfileRequest struct {
	FullName string `json:"fullName" binding:"required,max=255"`
}

type ChangePasswordRequest struct {
	OldPassword  string `json:"oldPassword" binding:"required"`
	NewPassword1 string `json:"newPassword1" binding:"required"`
	NewPassword2 string `json:"newPassword2" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token     string `json:"token" binding:"required"`
	Password1 string `json:"password1" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Role        string    `json:"role"`
	RoleLabel   string    `json:"roleLabel"`
	ProjectID   *string   `json:"projectId"`
	Verified    bool      `json:"verified"`
	IsSuperuser bool      `json:"isSuperuser"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserSummary is the compact user reference embedded in other resources
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        string(u.Role),
		RoleLabel:   u.Role.Label(),
		ProjectID:   u.ProjectID,
		Verified:    u.Verified,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
	}
}

func NewUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, FullName: u.FullName}
}
