package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"boqdesk/internal/importer"
	"boqdesk/internal/model"
)

// writeError 将领域错误映射为 HTTP 响应
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		ffe       *importer.FileFormatError
		rejected  *importer.CommitRejectedError
		persisted *importer.PersistenceError
	)
	switch {
	case errors.As(err, &ffe):
		c.JSON(http.StatusBadRequest, gin.H{"message": ffe.Message, "errors": ffe.Errors})
	case errors.As(err, &rejected):
		rows := rejected.Rows
		if rows == nil {
			rows = []importer.RejectedRow{}
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": rejected.Message, "rows": rows})
	case errors.As(err, &persisted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Task store unavailable; no tasks were created, retry the import"})
	case errors.Is(err, importer.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
