package models

import "time"

// MonthYearLayout renders labels like "March 2024".
const MonthYearLayout = "January 2006"

// WeekLabel identifies a week within a calendar month.
type WeekLabel struct {
	WeekNumber int    `json:"weekNumber"`
	MonthYear  string `json:"monthYear"`
}

// LabelFor returns the week-of-month label for t in t's location.
// Days 1-7 are week 1, 8-14 week 2, and so on up to week 5.
func LabelFor(t time.Time) WeekLabel {
	return WeekLabel{
		WeekNumber: (t.Day() + 6) / 7,
		MonthYear:  t.Format(MonthYearLayout),
	}
}
