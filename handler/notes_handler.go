package handler

import (
	"net/http"

	"noteshelf/dto"
	"noteshelf/export"
	"noteshelf/middleware"
	"noteshelf/usecase"
	"noteshelf/utils"

	"github.com/gin-gonic/gin"
)

func CreateNoteHandler(c *gin.Context, notes *usecase.NotesService) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}

	in, err := bindNoteInput(c)
	if err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := notes.Create(c.Request.Context(), userID, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Note created", dto.ToNoteResponse(note, true))
}

func GetNotesHandler(c *gin.Context, notes *usecase.NotesService) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}

	list, err := notes.List(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, dto.ToNoteResponses(list))
}

func UpdateNoteHandler(c *gin.Context, notes *usecase.NotesService) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}
	noteID, ok := parseID(c)
	if !ok {
		utils.NotFound(c, "Note not found")
		return
	}

	in, err := bindNoteInput(c)
	if err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := notes.Update(c.Request.Context(), userID, noteID, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, dto.ToNoteResponse(note, true))
}

func DeleteNoteHandler(c *gin.Context, notes *usecase.NotesService) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}
	noteID, ok := parseID(c)
	if !ok {
		utils.NotFound(c, "Note not found")
		return
	}

	if err := notes.Delete(c.Request.Context(), userID, noteID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Deleted", nil)
}

func GetNoteStatsHandler(c *gin.Context, notes *usecase.NotesService) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}

	stats, err := notes.Stats(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, gin.H{"stats": stats})
}

// GetPublicNoteHandler serves any note by id without authentication.
func GetPublicNoteHandler(c *gin.Context, notes *usecase.NotesService) {
	noteID, ok := parseID(c)
	if !ok {
		utils.NotFound(c, "Note not found")
		return
	}

	note, err := notes.PublicRead(c.Request.Context(), noteID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, dto.ToNoteResponse(note, false))
}

func DownloadNoteHandler(c *gin.Context, notes *usecase.NotesService, format export.Format) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.Unauthorized(c, "No token, authorization denied")
		return
	}
	noteID, ok := parseID(c)
	if !ok {
		utils.NotFound(c, "Note not found")
		return
	}

	out, err := notes.Export(c.Request.Context(), userID, noteID, format)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	writeExport(c, out)
}

func DownloadPublicNoteHandler(c *gin.Context, notes *usecase.NotesService, format export.Format) {
	noteID, ok := parseID(c)
	if !ok {
		utils.NotFound(c, "Note not found")
		return
	}

	out, err := notes.PublicExport(c.Request.Context(), noteID, format)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	writeExport(c, out)
}

func writeExport(c *gin.Context, out export.Rendered) {
	c.Header("Content-Disposition", out.ContentDisposition())
	c.Data(http.StatusOK, out.ContentType, out.Data)
}
