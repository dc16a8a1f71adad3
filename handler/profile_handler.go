package handler

import (
	"noteshelf/dto"
	"noteshelf/middleware"
	"noteshelf/usecase"
	"noteshelf/utils"

	"github.com/gin-gonic/gin"
)

func UpdateProfileHandler(c *gin.Context, profiles *usecase.ProfileService) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}

	upd, err := bindProfileUpdate(c)
	if err != nil {
		utils.BadRequest(c, "Invalid form data")
		return
	}

	user, err := profiles.UpdateProfile(c.Request.Context(), userID, upd)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Profile updated successfully", dto.ToUserProfile(user))
}

func DeleteAccountHandler(c *gin.Context, profiles *usecase.ProfileService) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}

	if err := profiles.DeleteAccount(c.Request.Context(), userID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Account deleted successfully", nil)
}
