package models

import "time"

// DailyReport is one teacher's report for one calendar day. A teacher has at
// most one report per ReportDate; resubmitting replaces the content.
type DailyReport struct {
	ID            string    `bson:"_id" json:"id"`
	TeacherID     string    `bson:"teacher_id" json:"teacher_id"`
	ReportDate    string    `bson:"report_date" json:"report_date"` // YYYY-MM-DD
	MaterialsUsed string    `bson:"materials_used" json:"materials_used"`
	NewWords      string    `bson:"new_words,omitempty" json:"new_words"`
	Comments      string    `bson:"comments,omitempty" json:"comments"`
	WeekNumber    int       `bson:"week_number" json:"week_number"`
	MonthYear     string    `bson:"month_year" json:"month_year"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// WeeklyReport is one teacher's summary for one week of a month.
// A teacher has at most one report per (WeekNumber, MonthYear).
type WeeklyReport struct {
	ID                     string    `bson:"_id" json:"id"`
	TeacherID              string    `bson:"teacher_id" json:"teacher_id"`
	WeekNumber             int       `bson:"week_number" json:"week_number"`
	MonthYear              string    `bson:"month_year" json:"month_year"`
	ActiveReaders          string    `bson:"active_readers" json:"active_readers"`
	StudentsNeedingSupport string    `bson:"students_needing_support" json:"students_needing_support"`
	CommonChallenges       string    `bson:"common_challenges" json:"common_challenges"`
	StrategiesNextWeek     string    `bson:"strategies_next_week" json:"strategies_next_week"`
	SubmittedAt            time.Time `bson:"submitted_at" json:"submitted_at"`
	UpdatedAt              time.Time `bson:"updated_at" json:"updated_at"`
}

// DailyReportRow is a daily report joined with its author for admin views.
type DailyReportRow struct {
	DailyReport `bson:",inline"`
	TeacherName string `bson:"teacher_name" json:"teacher_name"`
	ClassName   string `bson:"class_name" json:"class_name"`
}

// WeeklyReportRow is a weekly report joined with its author for admin views.
type WeeklyReportRow struct {
	WeeklyReport `bson:",inline"`
	TeacherName  string `bson:"teacher_name" json:"teacher_name"`
	ClassName    string `bson:"class_name" json:"class_name"`
}
