package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CoverReader reads stored cover images by key
type CoverReader interface {
	Get(storageKey string) ([]byte, string, bool)
}

// CoverFileHandler serves covers kept in process memory, for deployments
// without object storage
type CoverFileHandler struct {
	store CoverReader
}

// NewCoverFileHandler creates a new CoverFileHandler
func NewCoverFileHandler(store CoverReader) *CoverFileHandler {
	return &CoverFileHandler{store: store}
}

// Serve writes the image stored under the wildcard key
// GET /covers/*key
func (h *CoverFileHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	data, contentType, ok := h.store.Get(key)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, contentType, data)
}
