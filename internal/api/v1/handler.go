package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"boqdesk/internal/exporter"
	"boqdesk/internal/importer"
	"boqdesk/internal/model"
)

// Importer 两阶段导入
type Importer interface {
	Preview(ctx context.Context, in importer.PreviewInput) (*model.PreviewResult, error)
	Commit(ctx context.Context, in importer.CommitInput) (*model.CommitResult, error)
}

// Store 只读查询
type Store interface {
	exporter.Source
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListAttempts(ctx context.Context, eventID string, limit int) ([]model.ImportAttempt, error)
}

// Options 处理器选项
type Options struct {
	MaxUploadBytes int64
	MaxConfirmRows int // 确认请求体上限按行数推算；0 表示不限制
}

// Handler V1 API 处理器
type Handler struct {
	importer Importer
	store    Store
	exporter *exporter.Exporter
	opts     Options
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewHandler 创建 V1 API 处理器
func NewHandler(imp Importer, st Store, opts Options, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		importer: imp,
		store:    st,
		exporter: exporter.NewExporter(st),
		opts:     opts,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 批量导入
	router.POST("/tasks/upload-preview/:eventId", h.UploadPreview)
	router.POST("/tasks/confirm-import/:eventId", h.ConfirmImport)

	// 任务查询
	router.GET("/tasks/event/:eventId", h.ListEventTasks)
	router.GET("/tasks/event/:eventId/export", h.ExportEventTasks)
	router.GET("/tasks/:id", h.GetTask)

	// 引用数据
	router.GET("/departments", h.ListDepartments)
	router.GET("/users", h.ListUsers)
	router.GET("/events/:eventId", h.GetEvent)
	router.GET("/events/:eventId/import-attempts", h.ListImportAttempts)
}
