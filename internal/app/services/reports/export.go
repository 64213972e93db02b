package reports

import (
	"io"
	"strconv"

	"github.com/dalemusser/readinglog/internal/app/system/csvutil"
	"github.com/dalemusser/readinglog/internal/app/system/htmlsanitize"
	"github.com/dalemusser/readinglog/internal/domain/models"
)

const exportTimeLayout = "2006-01-02 15:04"

// WriteDailyCSV writes the admin daily listing as CSV. Stored markup is
// reduced to plain text.
func WriteDailyCSV(w io.Writer, rows []models.DailyReportRow) error {
	cw := csvutil.NewWriter(w)
	if err := cw.Header("Date", "Teacher", "Class", "Week", "Month", "Materials Used", "New Words", "Comments", "Submitted"); err != nil {
		return err
	}
	for _, r := range rows {
		err := cw.Row(
			r.ReportDate,
			r.TeacherName,
			r.ClassName,
			strconv.Itoa(r.WeekNumber),
			r.MonthYear,
			htmlsanitize.PlainText(r.MaterialsUsed),
			htmlsanitize.PlainText(r.NewWords),
			htmlsanitize.PlainText(r.Comments),
			r.UpdatedAt.UTC().Format(exportTimeLayout),
		)
		if err != nil {
			return err
		}
	}
	return cw.Flush()
}

// WriteWeeklyCSV writes the admin weekly listing as CSV.
func WriteWeeklyCSV(w io.Writer, rows []models.WeeklyReportRow) error {
	cw := csvutil.NewWriter(w)
	if err := cw.Header("Week", "Month", "Teacher", "Class", "Active Readers", "Students Needing Support",
		"Common Challenges", "Strategies Next Week", "Submitted"); err != nil {
		return err
	}
	for _, r := range rows {
		err := cw.Row(
			strconv.Itoa(r.WeekNumber),
			r.MonthYear,
			r.TeacherName,
			r.ClassName,
			htmlsanitize.PlainText(r.ActiveReaders),
			htmlsanitize.PlainText(r.StudentsNeedingSupport),
			htmlsanitize.PlainText(r.CommonChallenges),
			htmlsanitize.PlainText(r.StrategiesNextWeek),
			r.SubmittedAt.UTC().Format(exportTimeLayout),
		)
		if err != nil {
			return err
		}
	}
	return cw.Flush()
}
