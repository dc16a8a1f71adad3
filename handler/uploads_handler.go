package handler

import (
	"errors"
	"mime"
	"net/http"

	"noteshelf/storage"
	"noteshelf/utils"

	"github.com/gin-gonic/gin"
)

// ServeUploadHandler streams a stored attachment or avatar. Uploads are
// public, like the share links that reference them. Only images, PDF and
// plain text render inline; everything else is a sandboxed download.
func ServeUploadHandler(c *gin.Context, blobs storage.BlobStore) {
	blob, err := blobs.Get(c.Request.Context(), storage.RefPrefix+c.Param("name"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidRef) {
			utils.NotFound(c, "File not found")
			return
		}
		_ = c.Error(err)
		utils.InternalError(c, "Failed to read file")
		return
	}

	c.Header("X-Content-Type-Options", "nosniff")
	if !storage.InlineSafe(blob.ContentType) {
		c.Header("Content-Security-Policy", "sandbox; default-src 'none'")
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": c.Param("name")}))
	}
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}
