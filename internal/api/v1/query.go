package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boqdesk/internal/exporter"
	"boqdesk/internal/importer"
	"boqdesk/internal/model"
)

// ListEventTasks 活动任务列表，按导入顺序
// GET /api/tasks/event/:eventId
func (h *Handler) ListEventTasks(c *gin.Context) {
	eventID := c.Param("eventId")
	if _, err := h.store.GetEvent(c.Request.Context(), eventID); err != nil {
		h.writeEventError(c, err)
		return
	}
	tasks, err := h.store.ListTasksByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// ExportEventTasks 导出活动任务为 xlsx
// GET /api/tasks/event/:eventId/export
func (h *Handler) ExportEventTasks(c *gin.Context) {
	event, err := h.store.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		h.writeEventError(c, err)
		return
	}

	f, err := h.exporter.Export(c.Request.Context(), event.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", exporter.ContentDisposition(event))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.WithError(err).WithField("event_id", event.ID).Warn("export write interrupted")
	}
}

// GetTask 任务详情（含分派）
// GET /api/tasks/:id
func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ListDepartments 部门列表
// GET /api/departments
func (h *Handler) ListDepartments(c *gin.Context) {
	depts, err := h.store.ListDepartments(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if depts == nil {
		depts = []model.Department{}
	}
	c.JSON(http.StatusOK, depts)
}

// ListUsers 用户列表，可按部门过滤
// GET /api/users?departmentId=
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context(), c.Query("departmentId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, users)
}

// GetEvent 活动详情
// GET /api/events/:eventId
func (h *Handler) GetEvent(c *gin.Context) {
	event, err := h.store.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		h.writeEventError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// ListImportAttempts 活动的导入记录，最新的在前
// GET /api/events/:eventId/import-attempts?limit=
func (h *Handler) ListImportAttempts(c *gin.Context) {
	eventID := c.Param("eventId")
	if _, err := h.store.GetEvent(c.Request.Context(), eventID); err != nil {
		h.writeEventError(c, err)
		return
	}

	limit := 50
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	attempts, err := h.store.ListAttempts(c.Request.Context(), eventID, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if attempts == nil {
		attempts = []model.ImportAttempt{}
	}
	c.JSON(http.StatusOK, attempts)
}

func (h *Handler) writeEventError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrNotFound) {
		err = importer.ErrEventNotFound
	}
	h.writeError(c, err)
}
