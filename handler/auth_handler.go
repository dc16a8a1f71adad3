package handler

import (
	"time"

	"noteshelf/dto"
	"noteshelf/middleware"
	"noteshelf/usecase"
	"noteshelf/utils"

	"github.com/gin-gonic/gin"
)

func RegisterHandler(c *gin.Context, auth *usecase.AuthService) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.BindingMessage(err))
		return
	}

	user, err := auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "User registered successfully", dto.ToUserSummary(user))
}

func LoginHandler(c *gin.Context, auth *usecase.AuthService) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackAuthAttempt("failure", "validation")
		utils.BadRequest(c, utils.BindingMessage(err))
		return
	}

	res, err := auth.Login(c.Request.Context(), req.Email, req.Password, c.Request.UserAgent())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if res.Requires2FA {
		utils.SuccessWithMessage(c, "OTP sent to your email", res)
		return
	}
	utils.SuccessWithMessage(c, "Login successful", res)
}

func VerifyOTPHandler(c *gin.Context, auth *usecase.AuthService) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.BindingMessage(err))
		return
	}

	res, err := auth.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Login successful", res)
}

func Toggle2FAHandler(c *gin.Context, auth *usecase.AuthService) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}

	var req dto.Toggle2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.BindingMessage(err))
		return
	}

	enabled, err := auth.Toggle2FA(c.Request.Context(), userID, *req.TwoFactorEnabled)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	message := "2FA disabled"
	if enabled {
		message = "2FA enabled"
	}
	utils.SuccessWithMessage(c, message, gin.H{"twoFactorEnabled": enabled})
}

func ForgotPasswordHandler(c *gin.Context, auth *usecase.AuthService) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.BindingMessage(err))
		return
	}

	if err := auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Password reset link sent to your email", nil)
}

func ResetPasswordHandler(c *gin.Context, auth *usecase.AuthService) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.BindingMessage(err))
		return
	}

	if err := auth.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Password reset successful", nil)
}

func LogoutHandler(c *gin.Context, auth *usecase.AuthService) {
	token := c.GetString(middleware.ContextToken)
	expiresAt, _ := c.Get(middleware.ContextTokenExpiry)
	exp, _ := expiresAt.(time.Time)

	if err := auth.Logout(c.Request.Context(), token, exp); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Logged out successfully", nil)
}

func GetProfileHandler(c *gin.Context, auth *usecase.AuthService) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}

	user, err := auth.GetProfile(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, dto.ToUserProfile(user))
}
