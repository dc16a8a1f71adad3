package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  int         `json:"-"`                 // HTTP status code
	Message string      `json:"message,omitempty"` // Human readable message
	Error   string      `json:"error,omitempty"`   // Error kind
	Data    interface{} `json:"data,omitempty"`    // Response data
}

// Success responses
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Status: http.StatusOK,
		Data:   data,
	})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, &Response{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error responses
func Unauthorized(c *gin.Context, message string) {
	abortWith(c, http.StatusUnauthorized, KindAuth, message)
}

func BadRequest(c *gin.Context, message string) {
	abortWith(c, http.StatusBadRequest, KindValidation, message)
}

func NotFound(c *gin.Context, message string) {
	abortWith(c, http.StatusNotFound, KindNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	abortWith(c, http.StatusInternalServerError, KindServer, message)
}

func TooManyRequests(c *gin.Context, message string) {
	abortWith(c, http.StatusTooManyRequests, KindTooManyRequests, message)
}

// RespondError writes err using the status of its kind. Causes of server
// errors are attached to the gin context for the request logger, never
// serialized.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{Kind: KindServer, Message: "Internal server error", Err: err}
	}
	if appErr.Kind == KindServer && appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	abortWith(c, appErr.Status(), appErr.Kind, appErr.Message)
}

func abortWith(c *gin.Context, status int, kind ErrorKind, message string) {
	c.AbortWithStatusJSON(status, &Response{
		Status:  status,
		Message: message,
		Error:   string(kind),
	})
}
