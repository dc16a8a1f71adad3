package dto

import (
	"time"

	"noteshelf/model"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,notblank"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,notblank"`
}

type Toggle2FARequest struct {
	TwoFactorEnabled *bool `json:"twoFactorEnabled" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,notblank"`
}

// UserSummary is the public identity returned on register and login.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UserProfile struct {
	ID               uint            `json:"id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	Gender           string          `json:"gender,omitempty"`
	DOB              string          `json:"dob,omitempty"`
	ProfilePic       string          `json:"profilePic,omitempty"`
	TwoFactorEnabled bool            `json:"twoFactorEnabled"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Links            map[string]Link `json:"_links,omitempty"`
}

type LoginResult struct {
	Token       string       `json:"token,omitempty"`
	User        *UserSummary `json:"user,omitempty"`
	Requires2FA bool         `json:"requires2FA,omitempty"`
	Email       string       `json:"email,omitempty"`
}

// ProfileUpdate holds the optional fields of a profile update; empty values
// leave the stored value unchanged.
type ProfileUpdate struct {
	Username    string
	Email       string
	Gender      string
	DOB         string
	NewPassword string
	Avatar      *Upload
}

func ToUserSummary(user *model.User) UserSummary {
	return UserSummary{ID: user.ID, Username: user.Username, Email: user.Email}
}

func ToUserProfile(user *model.User) UserProfile {
	profile := UserProfile{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		Gender:           user.Gender,
		ProfilePic:       user.ProfilePic,
		TwoFactorEnabled: user.TwoFactorEnabled,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
		Links: map[string]Link{
			"self":   {Href: "/api/auth/profile", Method: "GET"},
			"update": {Href: "/api/auth/update-profile", Method: "PUT"},
			"delete": {Href: "/api/auth/delete-account", Method: "DELETE"},
		},
	}
	if user.DOB != nil {
		profile.DOB = user.DOB.Format("2006-01-02")
	}
	return profile
}
