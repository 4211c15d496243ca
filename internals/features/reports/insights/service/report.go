package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"kanisa_backend/internals/helpers/dbtime"
)

// ReportData is the statistics snapshot a narrative is written from.
// Nil sections (and an empty Departments map) are left out of the prompt.
type ReportData struct {
	ChurchName  string           `json:"church_name"`
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Members     *MemberStats     `json:"members,omitempty"`
	Attendance  *AttendanceStats `json:"attendance,omitempty"`
	Finance     *FinanceStats    `json:"finance,omitempty"`
	Departments map[string]int64 `json:"departments,omitempty"` // name -> active members
}

type MemberStats struct {
	Total       int64 `json:"total"`
	Active      int64 `json:"active"`
	NewInPeriod int64 `json:"new_in_period"`
}

type TypeAttendance struct {
	Sessions    int64   `json:"sessions"`
	Present     int64   `json:"present"`
	AverageRate float64 `json:"average_rate"`
}

type AttendanceStats struct {
	Sessions     int64                     `json:"sessions"`
	TotalPresent int64                     `json:"total_present"`
	AverageRate  float64                   `json:"average_rate"`
	ByType       map[string]TypeAttendance `json:"by_type"`
}

type FinanceStats struct {
	Currency     string           `json:"currency"`
	TotalIncome  int64            `json:"total_income"`
	TotalExpense int64            `json:"total_expense"`
	Net          int64            `json:"net"`
	ByCategory   map[string]int64 `json:"by_category"`
}

// BuildPrompt fills the report template. Output depends only on data; map
// sections are written in key order.
func BuildPrompt(data ReportData) string {
	var b strings.Builder

	church := strings.TrimSpace(data.ChurchName)
	if church == "" {
		church = "the church"
	}
	fmt.Fprintf(&b, "You are an assistant helping the leadership of %s understand their ministry data.\n", church)
	fmt.Fprintf(&b, "Reporting period: %s to %s.\n\n", dbtime.FormatDate(data.From), dbtime.FormatDate(data.To))

	if m := data.Members; m != nil {
		b.WriteString("## Membership\n")
		fmt.Fprintf(&b, "- Total members: %d\n", m.Total)
		fmt.Fprintf(&b, "- Active members: %d\n", m.Active)
		fmt.Fprintf(&b, "- New members this period: %d\n\n", m.NewInPeriod)
	}

	if a := data.Attendance; a != nil {
		b.WriteString("## Attendance\n")
		fmt.Fprintf(&b, "- Sessions held: %d\n", a.Sessions)
		fmt.Fprintf(&b, "- Total check-ins (present): %d\n", a.TotalPresent)
		fmt.Fprintf(&b, "- Average attendance rate: %.1f%%\n", a.AverageRate)
		for _, k := range sortedKeys(a.ByType) {
			t := a.ByType[k]
			fmt.Fprintf(&b, "- %s: %d sessions, %d present, %.1f%% average\n", k, t.Sessions, t.Present, t.AverageRate)
		}
		b.WriteString("\n")
	}

	if f := data.Finance; f != nil {
		b.WriteString("## Finance\n")
		fmt.Fprintf(&b, "- Income: %d %s\n", f.TotalIncome, f.Currency)
		fmt.Fprintf(&b, "- Expenses: %d %s\n", f.TotalExpense, f.Currency)
		fmt.Fprintf(&b, "- Net: %d %s\n", f.Net, f.Currency)
		for _, k := range sortedKeys(f.ByCategory) {
			fmt.Fprintf(&b, "- %s: %d %s\n", k, f.ByCategory[k], f.Currency)
		}
		b.WriteString("\n")
	}

	if len(data.Departments) > 0 {
		b.WriteString("## Departments (active members)\n")
		for _, k := range sortedKeys(data.Departments) {
			fmt.Fprintf(&b, "- %s: %d\n", k, data.Departments[k])
		}
		b.WriteString("\n")
	}

	b.WriteString("Write a short report in Markdown with three parts: key highlights, ")
	b.WriteString("areas of concern, and practical recommendations for the coming period. ")
	b.WriteString("Refer only to the figures above and do not invent numbers.\n")
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
