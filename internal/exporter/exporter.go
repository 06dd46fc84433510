package exporter

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"boqdesk/internal/model"
)

// Source 导出所需的数据来源
type Source interface {
	ListTasksByEvent(ctx context.Context, eventID string) ([]*model.Task, error)
	ListDepartments(ctx context.Context) ([]model.Department, error)
	ListUsers(ctx context.Context, departmentID string) ([]model.User, error)
}

// SheetName 导出工作表名称
const SheetName = "Tasks"

// Columns 导出列，与导入表头别名一致，导出文件可直接再次导入
var Columns = []string{"S.No", "Task", "Description", "Department", "Remark", "Assigned To"}

var columnWidths = []float64{8, 40, 50, 20, 30, 30}

// Exporter 活动任务导出器
type Exporter struct {
	source Source
}

// NewExporter 创建导出器
func NewExporter(source Source) *Exporter {
	return &Exporter{source: source}
}

// Export 将活动下的任务按导入顺序写入新工作簿
func (e *Exporter) Export(ctx context.Context, eventID string) (*excelize.File, error) {
	tasks, err := e.source.ListTasksByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	names, err := e.assigneeNames(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeTaskSheet(f, tasks, names); err != nil {
		_ = f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeTaskSheet(f *excelize.File, tasks []*model.Task, names map[string]string) error {
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to apply header style: %w", err)
	}
	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	for i, t := range tasks {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			optionalInt(t.SNo),
			t.TaskName,
			t.Description,
			t.DepartmentName,
			optionalString(t.Remark),
			assignedTo(t.Assignments, names),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write task %s: %w", t.ID, err)
		}
	}
	return nil
}

// assigneeNames 用户与部门 ID 到名称的映射
func (e *Exporter) assigneeNames(ctx context.Context) (map[string]string, error) {
	depts, err := e.source.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	users, err := e.source.ListUsers(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(depts)+len(users))
	for _, d := range depts {
		names[d.ID] = d.Name
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

func assignedTo(assignments []model.Assignment, names map[string]string) string {
	var parts []string
	for _, a := range assignments {
		var id string
		switch {
		case a.UserID != nil:
			id = *a.UserID
		case a.DepartmentID != nil:
			id = *a.DepartmentID
		default:
			continue
		}
		if name, ok := names[id]; ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, id)
		}
	}
	return strings.Join(parts, ", ")
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
