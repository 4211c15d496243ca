// Package exports renders attendance for a date/type as an XLSX roster.
package exports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	memberModel "kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

const SheetName = "Attendance"

var header = []any{"No", "Member Number", "Name", "Phone", "Status", "Checked In At", "Notes"}

type Exporter struct {
	db       *gorm.DB
	sessions *sessionService.Service
}

func New(db *gorm.DB, sessions *sessionService.Service) *Exporter {
	return &Exporter{db: db, sessions: sessions}
}

func FileName(date time.Time, t recordModel.AttendanceType) string {
	return fmt.Sprintf("attendance_%s_%s.xlsx", dbtime.FormatDate(date), t)
}

// BuildWorkbook lists every active member as Present or Absent followed by
// the aggregate counts.
func (e *Exporter) BuildWorkbook(ctx context.Context, date time.Time, t recordModel.AttendanceType) ([]byte, error) {
	if !t.Valid() {
		return nil, apperr.Invalid("invalid attendance_type")
	}
	date = dbtime.DateOf(date, time.UTC)
	db := e.db.WithContext(ctx)

	var members []memberModel.MemberModel
	if err := db.Scopes(memberModel.ActiveScope).
		Order("member_last_name, member_first_name").
		Find(&members).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to load members")
	}

	var recs []recordModel.AttendanceModel
	if err := db.Where("attendance_date = ? AND attendance_type = ?", date, t).
		Find(&recs).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to load attendance")
	}
	byMember := make(map[uuid.UUID]recordModel.AttendanceModel, len(recs))
	for _, r := range recs {
		if prev, ok := byMember[r.AttendanceMemberID]; ok && prev.AttendancePresent {
			continue
		}
		byMember[r.AttendanceMemberID] = r
	}

	counts, err := e.sessions.Compute(ctx, date, t)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, apperr.Internal("failed to build workbook", err)
	}
	title := fmt.Sprintf("%s attendance, %s", t.Label(), dbtime.FormatDate(date))
	if err := f.SetCellValue(SheetName, "A1", title); err != nil {
		return nil, apperr.Internal("failed to build workbook", err)
	}
	if err := f.SetSheetRow(SheetName, "A3", &header); err != nil {
		return nil, apperr.Internal("failed to build workbook", err)
	}

	row := 4
	for i, m := range members {
		status, checkedIn, notes := "Absent", "", ""
		if r, ok := byMember[m.MemberID]; ok {
			if r.AttendancePresent {
				status = "Present"
			}
			if r.AttendanceCheckedInAt != nil {
				checkedIn = r.AttendanceCheckedInAt.UTC().Format(time.RFC3339)
			}
			if r.AttendanceNotes != nil {
				notes = *r.AttendanceNotes
			}
		}
		phone := ""
		if m.MemberPhone != nil {
			phone = *m.MemberPhone
		}
		cells := []any{i + 1, m.MemberNumber, m.FullName(), phone, status, checkedIn, notes}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return nil, apperr.Internal("failed to build workbook", err)
		}
		row++
	}

	row++
	summary := [][]any{
		{"Total members", counts.TotalMembers},
		{"Present", counts.PresentCount},
		{"Absent", counts.AbsentCount},
		{"Attendance rate (%)", counts.AttendanceRate},
	}
	for _, s := range summary {
		cell, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetSheetRow(SheetName, cell, &s); err != nil {
			return nil, apperr.Internal("failed to build workbook", err)
		}
		row++
	}

	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(SheetName, "A1", "A1", bold)
		_ = f.SetCellStyle(SheetName, "A3", "G3", bold)
	}
	_ = f.SetColWidth(SheetName, "B", "B", 16)
	_ = f.SetColWidth(SheetName, "C", "C", 30)
	_ = f.SetColWidth(SheetName, "D", "G", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperr.Internal("failed to write workbook", err)
	}
	return buf.Bytes(), nil
}
