package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sidelinehq/coach-backend/internal/config"
)

// allowedUploadExts are the resume formats the frontend may attach.
var allowedUploadExts = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// UploadHandler validates a resume attachment and echoes its metadata back.
// Parsing happens client-side; the server only gates type and size.
// POST /api/upload
func UploadHandler(envCfg *config.EnvConfig) gin.HandlerFunc {
	maxBytes := int64(envCfg.MaxUploadSizeMB) * 1024 * 1024

	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "file field is required"})
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedUploadExts[ext] {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "unsupported_file_type",
				"message": "supported formats: pdf, docx, txt, md",
			})
			return
		}

		if file.Size > maxBytes {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "file_too_large",
				"message": "file exceeds the upload size limit",
				"maxSize": maxBytes,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"fileName":    filepath.Base(file.Filename),
			"size":        file.Size,
			"contentType": file.Header.Get("Content-Type"),
		})
	}
}
