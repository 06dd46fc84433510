package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"boqdesk/internal/importer"
	"boqdesk/internal/model"
	"boqdesk/internal/store"
)

type testEnv struct {
	st     *store.Store
	router *gin.Engine
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), "boqdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	require.NoError(t, st.CreateDepartment(ctx, model.Department{ID: "d-elec", Name: "Electrical"}))
	require.NoError(t, st.CreateDepartment(ctx, model.Department{ID: "d-civil", Name: "Civil"}))
	require.NoError(t, st.CreateUser(ctx, model.User{ID: "u-sara", Name: "Sara Khan", DepartmentID: "d-elec"}))
	require.NoError(t, st.CreateEvent(ctx, model.Event{ID: "evt-1", Name: "Annual Gala"}))

	logger, _ := test.NewNullLogger()
	coord := importer.NewCoordinator(importer.Dependencies{
		References: st,
		Events:     st,
		Tasks:      st,
		Attempts:   st,
		Notifier:   st,
	}, importer.DefaultOptions(), logger)

	r := gin.New()
	NewHandler(coord, st, opts, logger).RegisterRoutes(r.Group("/api"))
	return &testEnv{st: st, router: r}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, url, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, url string, v any) *http.Request {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

const boqCSV = "S.No,Task,Description,Department,Remark,Name\n" +
	"1,Wire conduit,Main hall,Electrical,,Sara Khan\n" +
	"1,Paint wall,,Civil,Two coats,\n"

type previewBody struct {
	AttemptID string               `json:"attemptId"`
	Preview   []model.CandidateRow `json:"preview"`
	Stats     model.PreviewStats   `json:"stats"`
}

func TestUploadPreviewThenConfirm(t *testing.T) {
	env := newTestEnv(t, Options{MaxUploadBytes: 1 << 20})

	w := env.do(uploadRequest(t, "/api/tasks/upload-preview/evt-1", "boq.csv", []byte(boqCSV)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var preview previewBody
	decode(t, w, &preview)
	require.NotEmpty(t, preview.AttemptID)
	require.Len(t, preview.Preview, 2)
	require.Equal(t, model.PreviewStats{Total: 2, Valid: 2, Warnings: 2, Errors: 0}, preview.Stats)
	require.Equal(t, "Paint wall", preview.Preview[1].TaskName)

	tasks, err := env.st.ListTasksByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Empty(t, tasks, "preview must not persist tasks")

	// 原样回传预览行（含客户端状态字段）
	w = env.do(jsonRequest(t, http.MethodPost, "/api/tasks/confirm-import/evt-1", map[string]any{
		"tasks":     preview.Preview,
		"attemptId": preview.AttemptID,
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var commit model.CommitResult
	decode(t, w, &commit)
	require.Equal(t, 2, commit.TasksCreated)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/tasks/event/evt-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Task
	decode(t, w, &list)
	require.Len(t, list, 2)
	require.Equal(t, "Wire conduit", list[0].TaskName)
	require.Len(t, list[0].Assignments, 1)
	require.Equal(t, "u-sara", *list[0].Assignments[0].UserID)
	require.Equal(t, "d-civil", *list[1].Assignments[0].DepartmentID)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/tasks/"+list[1].ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var task model.Task
	decode(t, w, &task)
	require.Equal(t, "Two coats", *task.Remark)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/events/evt-1/import-attempts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var attempts []model.ImportAttempt
	decode(t, w, &attempts)
	require.Len(t, attempts, 2)
	require.Equal(t, model.AttemptStatusConfirmed, attempts[0].Status)
}

func TestUploadPreview_XLSX(t *testing.T) {
	env := newTestEnv(t, Options{})

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"S.No", "Task", "Department"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "Pour slab", "civil"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2, "Fix pipes", "Plumbing"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	w := env.do(uploadRequest(t, "/api/tasks/upload-preview/evt-1", "boq.xlsx", buf.Bytes()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var preview previewBody
	decode(t, w, &preview)
	require.Equal(t, model.PreviewStats{Total: 2, Valid: 1, Warnings: 0, Errors: 1}, preview.Stats)
	require.Equal(t, []string{"Unknown department: Plumbing"}, preview.Preview[1].Errors)
}

func TestUploadPreview_FileFormatError(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(uploadRequest(t, "/api/tasks/upload-preview/evt-1", "boq.csv", []byte("S.No,Task\n1,Wire conduit\n")))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	decode(t, w, &body)
	require.Equal(t, "CSV validation failed", body.Message)
	require.NotEmpty(t, body.Errors)
	require.Contains(t, strings.Join(body.Errors, " "), "Department")
}

func TestUploadPreview_RequestErrors(t *testing.T) {
	env := newTestEnv(t, Options{MaxUploadBytes: 10})

	w := env.do(uploadRequest(t, "/api/tasks/upload-preview/missing", "boq.csv", []byte("Task")))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(uploadRequest(t, "/api/tasks/upload-preview/evt-1", "boq.csv", []byte(boqCSV)))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/upload-preview/evt-1", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	w = env.do(req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmImport_RejectsInvalidRows(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(jsonRequest(t, http.MethodPost, "/api/tasks/confirm-import/evt-1", map[string]any{
		"tasks": []map[string]any{
			{"sNo": 1, "taskName": "Wire conduit", "departmentName": "Electrical"},
			{"line": 5, "sNo": 2, "taskName": "Fix pipes", "departmentName": "Plumbing", "isValid": true, "errors": []string{}},
			{"sNo": 3, "taskName": "", "departmentName": "Civil"},
		},
	}))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var body struct {
		Message string                 `json:"message"`
		Rows    []importer.RejectedRow `json:"rows"`
	}
	decode(t, w, &body)
	require.Len(t, body.Rows, 2)
	require.Equal(t, 2, body.Rows[0].Row)
	require.Equal(t, 5, body.Rows[0].Line)
	require.Equal(t, []string{"Unknown department: Plumbing"}, body.Rows[0].Errors)
	require.Equal(t, 3, body.Rows[1].Row)

	tasks, err := env.st.ListTasksByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestConfirmImport_PayloadValidation(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(jsonRequest(t, http.MethodPost, "/api/tasks/confirm-import/evt-1", map[string]any{"tasks": []any{}}))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(jsonRequest(t, http.MethodPost, "/api/tasks/confirm-import/evt-1", map[string]any{
		"tasks": []map[string]any{{"taskName": strings.Repeat("x", 501), "departmentName": "Civil"}},
	}))
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Errors []string `json:"errors"`
	}
	decode(t, w, &body)
	require.Equal(t, []string{"tasks[0].taskName must be at most 500 characters"}, body.Errors)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/confirm-import/evt-1", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusBadRequest, env.do(req).Code)

	w = env.do(jsonRequest(t, http.MethodPost, "/api/tasks/confirm-import/missing", map[string]any{
		"tasks": []map[string]any{{"taskName": "A", "departmentName": "Civil"}},
	}))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmImport_BodyCappedByRowLimit(t *testing.T) {
	env := newTestEnv(t, Options{MaxConfirmRows: 1})

	w := env.do(jsonRequest(t, http.MethodPost, "/api/tasks/confirm-import/evt-1", map[string]any{
		"tasks": []map[string]any{
			{"taskName": "A", "departmentName": "Civil", "padding": strings.Repeat("x", 200<<10)},
		},
	}))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	tasks, err := env.st.ListTasksByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Empty(t, tasks)

	w = env.do(jsonRequest(t, http.MethodPost, "/api/tasks/confirm-import/evt-1", map[string]any{
		"tasks": []map[string]any{{"sNo": 1, "taskName": "A", "departmentName": "Civil"}},
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestReferenceEndpoints(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/departments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var depts []model.Department
	decode(t, w, &depts)
	require.Len(t, depts, 2)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/users?departmentId=d-civil", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/events/evt-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/events/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/tasks/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/events/evt-1/import-attempts?limit=x", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportEventTasks(t *testing.T) {
	env := newTestEnv(t, Options{})
	one := 1
	_, err := env.st.CreateTasks(context.Background(), "evt-1", []model.NewTask{
		{ID: "t1", SNo: &one, TaskName: "Wire conduit", DepartmentName: "Electrical", Position: 1},
	})
	require.NoError(t, err)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/tasks/event/evt-1/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), `filename="annual-gala-tasks.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Tasks")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Wire conduit", rows[1][1])

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/tasks/event/nope/export", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteError_UnexpectedIsLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	h := &Handler{log: logger}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.writeError(c, &importer.PersistenceError{Err: context.DeadlineExceeded})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.writeError(c, context.Canceled)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
