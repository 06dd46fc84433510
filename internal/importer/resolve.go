package importer

import (
	"boqdesk/internal/model"
	"boqdesk/internal/reference"
)

// Resolve 用快照填充部门与用户的解析结果
// 用户只在已解析出的部门内匹配
func Resolve(row *model.CandidateRow, snap *reference.Snapshot) {
	row.ResolvedDepartmentID = nil
	row.ResolvedUserID = nil

	if row.DepartmentName == "" {
		return
	}
	dept, ok := snap.Department(row.DepartmentName)
	if !ok {
		return
	}
	deptID := dept.ID
	row.ResolvedDepartmentID = &deptID

	if row.AssigneeName == nil {
		return
	}
	if user, ok := snap.UserInDepartment(deptID, *row.AssigneeName); ok {
		userID := user.ID
		row.ResolvedUserID = &userID
	}
}
