package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"boqdesk/internal/importer"
	"boqdesk/internal/model"
)

const (
	// multipart 头部等额外开销
	multipartOverhead = 1 << 20
	// 单行字段长度上限之和留出 JSON 转义余量
	confirmRowBytes = 16 << 10
	// attemptId 与外层结构
	confirmEnvelopeBytes = 64 << 10
)

// UploadPreview 上传文件并返回逐行预览，不写入任务
// POST /api/tasks/upload-preview/:eventId
func (h *Handler) UploadPreview(c *gin.Context) {
	if h.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fileTooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded", "errors": []string{`multipart field "file" is required`}})
		return
	}
	defer file.Close()

	if h.opts.MaxUploadBytes > 0 && header.Size > h.opts.MaxUploadBytes {
		h.fileTooLarge(c)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read uploaded file"})
		return
	}

	res, err := h.importer.Preview(c.Request.Context(), importer.PreviewInput{
		EventID:  c.Param("eventId"),
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) fileTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"message": "File too large",
		"errors":  []string{fmt.Sprintf("The upload limit is %d bytes", h.opts.MaxUploadBytes)},
	})
}

// confirmImportRequest 确认导入请求体
//
// 只接收可编辑字段；客户端回传的校验结果一律丢弃。
type confirmImportRequest struct {
	Tasks     []confirmRow `json:"tasks" validate:"required,min=1,dive"`
	AttemptID string       `json:"attemptId" validate:"omitempty,max=64"`
}

type confirmRow struct {
	Line           int     `json:"line" validate:"min=0"`
	SNo            *int    `json:"sNo"`
	TaskName       string  `json:"taskName" validate:"max=500"`
	Description    string  `json:"description" validate:"max=4000"`
	DepartmentName string  `json:"departmentName" validate:"max=500"`
	Remark         *string `json:"remark" validate:"omitempty,max=2000"`
	UserName       *string `json:"userName" validate:"omitempty,max=200"`
}

func (r confirmRow) candidate() model.CandidateRow {
	return model.CandidateRow{
		Line:           r.Line,
		SequenceNumber: r.SNo,
		TaskName:       r.TaskName,
		Description:    r.Description,
		DepartmentName: r.DepartmentName,
		Remark:         r.Remark,
		AssigneeName:   r.UserName,
	}
}

// ConfirmImport 重新校验客户端回传的行，全部通过才写入
// POST /api/tasks/confirm-import/:eventId
func (h *Handler) ConfirmImport(c *gin.Context) {
	if h.opts.MaxConfirmRows > 0 {
		limit := int64(h.opts.MaxConfirmRows)*confirmRowBytes + confirmEnvelopeBytes
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var req confirmImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"message": "Request body too large",
				"errors":  []string{fmt.Sprintf("At most %d rows can be confirmed at once", h.opts.MaxConfirmRows)},
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "errors": []string{err.Error()}})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "errors": validationMessages(err)})
		return
	}

	rows := make([]model.CandidateRow, len(req.Tasks))
	for i, r := range req.Tasks {
		rows[i] = r.candidate()
	}

	res, err := h.importer.Commit(c.Request.Context(), importer.CommitInput{
		EventID:   c.Param("eventId"),
		AttemptID: req.AttemptID,
		Rows:      rows,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
