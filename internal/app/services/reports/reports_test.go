package reports_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/readinglog/internal/app/services/reports"
	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"go.uber.org/zap"
)

// memReports is an in-memory DailyStore, WeeklyStore and AccountReader.
type memReports struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	daily    map[string]models.DailyReport  // teacher|date
	weekly   map[string]models.WeeklyReport // teacher|week|month
	fail     error
}

func newMem() *memReports {
	return &memReports{
		accounts: map[string]models.Account{},
		daily:    map[string]models.DailyReport{},
		weekly:   map[string]models.WeeklyReport{},
	}
}

type dailyView struct{ *memReports }
type weeklyView struct{ *memReports }

func (m dailyView) Upsert(_ context.Context, r models.DailyReport) (models.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return models.DailyReport{}, m.fail
	}
	key := r.TeacherID + "|" + r.ReportDate
	if old, ok := m.daily[key]; ok {
		r.ID, r.CreatedAt = old.ID, old.CreatedAt
	}
	m.daily[key] = r
	return r, nil
}

func (m dailyView) ListByTeacher(_ context.Context, teacherID string, limit int64) ([]models.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DailyReport{}
	for _, r := range m.daily {
		if r.TeacherID == teacherID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate > out[j].ReportDate })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m dailyView) ListAll(_ context.Context) ([]models.DailyReportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DailyReportRow{}
	for _, r := range m.daily {
		a, ok := m.accounts[r.TeacherID]
		if !ok {
			continue
		}
		out = append(out, models.DailyReportRow{DailyReport: r, TeacherName: a.FullName, ClassName: a.AssignedClass})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate > out[j].ReportDate })
	return out, nil
}

func (m weeklyView) Upsert(_ context.Context, r models.WeeklyReport) (models.WeeklyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s|%d|%s", r.TeacherID, r.WeekNumber, r.MonthYear)
	if old, ok := m.weekly[key]; ok {
		r.ID, r.SubmittedAt = old.ID, old.SubmittedAt
	}
	m.weekly[key] = r
	return r, nil
}

func (m weeklyView) ListByTeacher(_ context.Context, teacherID string, limit int64) ([]models.WeeklyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.WeeklyReport{}
	for _, r := range m.weekly {
		if r.TeacherID == teacherID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m weeklyView) ListAll(_ context.Context) ([]models.WeeklyReportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.WeeklyReportRow{}
	for _, r := range m.weekly {
		a, ok := m.accounts[r.TeacherID]
		if !ok {
			continue
		}
		out = append(out, models.WeeklyReportRow{WeeklyReport: r, TeacherName: a.FullName, ClassName: a.AssignedClass})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m *memReports) GetByID(_ context.Context, id string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return models.Account{}, apperr.ErrNotFound
	}
	return a, nil
}

// clock returns a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setup(t *testing.T, at time.Time, loc *time.Location) (*reports.Service, *memReports, *clock) {
	t.Helper()
	m := newMem()
	m.accounts["jane"] = models.Account{ID: "jane", FullName: "Jane Doe", Username: "jane", AssignedClass: "Grade 3"}
	c := &clock{t: at}
	svc := reports.New(dailyView{m}, weeklyView{m}, m, loc, zap.NewNop()).WithClock(c.now)
	return svc, m, c
}

func TestSubmitDaily_Labels(t *testing.T) {
	svc, _, _ := setup(t, time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC), time.UTC)
	ctx := context.Background()

	_, err := svc.SubmitDaily(ctx, "jane", reports.DailyInput{ReportDate: "2024-03-05", MaterialsUsed: "Frog and Toad"})
	if err != nil {
		t.Fatalf("SubmitDaily failed: %v", err)
	}
	rows, err := svc.ListAllDaily(ctx)
	if err != nil {
		t.Fatalf("ListAllDaily failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(rows))
	}
	got := rows[0]
	if got.TeacherName != "Jane Doe" || got.ClassName != "Grade 3" {
		t.Errorf("join: got %q/%q", got.TeacherName, got.ClassName)
	}
	if got.WeekNumber != 1 || got.MonthYear != "March 2024" {
		t.Errorf("label: got week %d %q, want week 1 %q", got.WeekNumber, got.MonthYear, "March 2024")
	}
}

func TestSubmitDaily_LabelFromClockNotDate(t *testing.T) {
	svc, m, _ := setup(t, time.Date(2024, 4, 16, 9, 0, 0, 0, time.UTC), time.UTC)

	if _, err := svc.SubmitDaily(context.Background(), "jane", reports.DailyInput{ReportDate: "2024-03-05", MaterialsUsed: "x"}); err != nil {
		t.Fatalf("SubmitDaily failed: %v", err)
	}
	r := m.daily["jane|2024-03-05"]
	if r.WeekNumber != 3 || r.MonthYear != "April 2024" {
		t.Errorf("label: got week %d %q, want week 3 %q", r.WeekNumber, r.MonthYear, "April 2024")
	}
}

func TestSubmitDaily_UsesConfiguredZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("zone data unavailable: %v", err)
	}
	// 03:00 UTC on April 1 is still March 31 in Chicago.
	svc, _, _ := setup(t, time.Date(2024, 4, 1, 3, 0, 0, 0, time.UTC), chicago)
	label := svc.CurrentLabel()
	if label.WeekNumber != 5 || label.MonthYear != "March 2024" {
		t.Errorf("label: got %+v, want week 5 March 2024", label)
	}
}

func TestSubmitDaily_Resubmit(t *testing.T) {
	svc, _, c := setup(t, time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC), time.UTC)
	ctx := context.Background()

	first, err := svc.SubmitDaily(ctx, "jane", reports.DailyInput{ReportDate: "2024-03-05", MaterialsUsed: "first"})
	if err != nil {
		t.Fatalf("first SubmitDaily failed: %v", err)
	}
	c.t = c.t.Add(time.Hour)
	second, err := svc.SubmitDaily(ctx, "jane", reports.DailyInput{ReportDate: "2024-03-05", MaterialsUsed: "second", Comments: " good day "})
	if err != nil {
		t.Fatalf("second SubmitDaily failed: %v", err)
	}
	if first != second {
		t.Errorf("id changed on resubmit: %q -> %q", first, second)
	}
	list, _ := svc.ListDaily(ctx, "jane")
	if len(list) != 1 {
		t.Fatalf("rows: got %d, want 1", len(list))
	}
	if list[0].MaterialsUsed != "second" || list[0].Comments != "good day" {
		t.Errorf("content: got %q / %q", list[0].MaterialsUsed, list[0].Comments)
	}
}

func TestSubmitDaily_Validation(t *testing.T) {
	svc, m, _ := setup(t, time.Now(), time.UTC)
	tests := []struct {
		name string
		in   reports.DailyInput
		msg  string
	}{
		{"missing materials", reports.DailyInput{ReportDate: "2024-03-05"}, "Materials used is required."},
		{"blank materials", reports.DailyInput{ReportDate: "2024-03-05", MaterialsUsed: "   "}, "Materials used is required."},
		{"bad date", reports.DailyInput{ReportDate: "03/05/2024", MaterialsUsed: "x"}, "Report date must be a date in YYYY-MM-DD format."},
		{"missing date", reports.DailyInput{MaterialsUsed: "x"}, "Report date is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitDaily(context.Background(), "jane", tt.in)
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if !strings.Contains(ve.Error(), tt.msg) {
				t.Errorf("message: got %q, want it to contain %q", ve.Error(), tt.msg)
			}
		})
	}
	if len(m.daily) != 0 {
		t.Errorf("invalid input reached storage: %d rows", len(m.daily))
	}
}

func TestSubmitDaily_StoresTextAsTyped(t *testing.T) {
	svc, m, _ := setup(t, time.Now(), time.UTC)
	in := reports.DailyInput{
		ReportDate:    "2024-03-05",
		MaterialsUsed: "  Tom & Jerry, pages 3<5 ",
		NewWords:      "café, naïve",
		Comments:      `He said "great" & left`,
	}
	if _, err := svc.SubmitDaily(context.Background(), "jane", in); err != nil {
		t.Fatalf("SubmitDaily failed: %v", err)
	}
	got := m.daily["jane|2024-03-05"]
	if got.MaterialsUsed != "Tom & Jerry, pages 3<5" {
		t.Errorf("MaterialsUsed: got %q", got.MaterialsUsed)
	}
	if got.NewWords != "café, naïve" {
		t.Errorf("NewWords: got %q", got.NewWords)
	}
	if got.Comments != `He said "great" & left` {
		t.Errorf("Comments: got %q", got.Comments)
	}

	list, err := svc.ListDaily(context.Background(), "jane")
	if err != nil {
		t.Fatalf("ListDaily failed: %v", err)
	}
	if len(list) != 1 || list[0].MaterialsUsed != "Tom & Jerry, pages 3<5" || list[0].Comments != `He said "great" & left` {
		t.Errorf("listed: got %+v", list)
	}
}

func TestSubmitWeekly_StoresTextAsTyped(t *testing.T) {
	svc, m, _ := setup(t, time.Now(), time.UTC)
	in := reports.WeeklyInput{
		ActiveReaders:          "15 <of 20>",
		StudentsNeedingSupport: "A & B",
		CommonChallenges:       `"th" blends`,
		StrategiesNextWeek:     "<b>partner</b> reading",
	}
	if _, err := svc.SubmitWeekly(context.Background(), "jane", in); err != nil {
		t.Fatalf("SubmitWeekly failed: %v", err)
	}
	if len(m.weekly) != 1 {
		t.Fatalf("weekly rows: got %d, want 1", len(m.weekly))
	}
	list, err := svc.ListWeekly(context.Background(), "jane")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListWeekly: got %d rows, err %v", len(list), err)
	}
	r := list[0]
	if r.ActiveReaders != in.ActiveReaders || r.StudentsNeedingSupport != in.StudentsNeedingSupport ||
		r.CommonChallenges != in.CommonChallenges || r.StrategiesNextWeek != in.StrategiesNextWeek {
		t.Errorf("got %+v, want fields of %+v", r, in)
	}
}

func TestSubmitDaily_StorageFailure(t *testing.T) {
	svc, m, _ := setup(t, time.Now(), time.UTC)
	m.fail = errors.New("disk on fire")
	_, err := svc.SubmitDaily(context.Background(), "jane", reports.DailyInput{ReportDate: "2024-03-05", MaterialsUsed: "x"})
	var se *apperr.StorageError
	if !errors.As(err, &se) {
		t.Errorf("got %v, want StorageError", err)
	}
}

func weeklyInput(readers string) reports.WeeklyInput {
	return reports.WeeklyInput{
		ActiveReaders:          readers,
		StudentsNeedingSupport: "Sam",
		CommonChallenges:       "Blends",
		StrategiesNextWeek:     "Partner reading",
	}
}

func TestSubmitWeekly_ResubmitKeepsOneRow(t *testing.T) {
	svc, _, c := setup(t, time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC), time.UTC)
	ctx := context.Background()

	if _, err := svc.SubmitWeekly(ctx, "jane", weeklyInput("12")); err != nil {
		t.Fatalf("first SubmitWeekly failed: %v", err)
	}
	c.t = c.t.Add(24 * time.Hour)
	if _, err := svc.SubmitWeekly(ctx, "jane", weeklyInput("15")); err != nil {
		t.Fatalf("second SubmitWeekly failed: %v", err)
	}

	rows, err := svc.ListAllWeekly(ctx)
	if err != nil {
		t.Fatalf("ListAllWeekly failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(rows))
	}
	if rows[0].ActiveReaders != "15" || rows[0].WeekNumber != 2 || rows[0].MonthYear != "March 2024" {
		t.Errorf("row: got %+v", rows[0].WeeklyReport)
	}
}

func TestSubmitWeekly_RequiresAllFields(t *testing.T) {
	svc, _, _ := setup(t, time.Now(), time.UTC)
	in := weeklyInput("12")
	in.CommonChallenges = ""
	_, err := svc.SubmitWeekly(context.Background(), "jane", in)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if !strings.Contains(ve.Error(), "Common challenges is required.") {
		t.Errorf("message: got %q", ve.Error())
	}
}

func TestListDaily_Capped(t *testing.T) {
	svc, _, _ := setup(t, time.Now(), time.UTC)
	ctx := context.Background()
	for d := 1; d <= 25; d++ {
		date := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		if _, err := svc.SubmitDaily(ctx, "jane", reports.DailyInput{ReportDate: date, MaterialsUsed: "book"}); err != nil {
			t.Fatalf("SubmitDaily(%s) failed: %v", date, err)
		}
	}
	list, err := svc.ListDaily(ctx, "jane")
	if err != nil {
		t.Fatalf("ListDaily failed: %v", err)
	}
	if len(list) != reports.DailyListLimit {
		t.Errorf("len: got %d, want %d", len(list), reports.DailyListLimit)
	}
	if list[0].ReportDate != "2024-01-25" {
		t.Errorf("newest: got %s, want 2024-01-25", list[0].ReportDate)
	}
}

func TestProfile(t *testing.T) {
	svc, _, _ := setup(t, time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC), time.UTC)
	p, err := svc.Profile(context.Background(), "jane")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	want := reports.Profile{FullName: "Jane Doe", Username: "jane", AssignedClass: "Grade 3", CurrentWeek: 3, MonthYear: "March 2024"}
	if p != want {
		t.Errorf("got %+v, want %+v", p, want)
	}
	if _, err := svc.Profile(context.Background(), "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown teacher: got %v, want ErrNotFound", err)
	}
}

func TestWriteDailyCSV(t *testing.T) {
	rows := []models.DailyReportRow{{
		DailyReport: models.DailyReport{
			ReportDate:    "2024-03-05",
			MaterialsUsed: "<b>Charlotte&#39;s Web</b>",
			WeekNumber:    1,
			MonthYear:     "March 2024",
			UpdatedAt:     time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		},
		TeacherName: "Jane Doe",
		ClassName:   "Grade 3",
	}}
	var buf bytes.Buffer
	if err := reports.WriteDailyCSV(&buf, rows); err != nil {
		t.Fatalf("WriteDailyCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	want := "2024-03-05,Jane Doe,Grade 3,1,March 2024,Charlotte's Web,,,2024-03-05 14:30"
	if lines[1] != want {
		t.Errorf("row: got %q, want %q", lines[1], want)
	}
}

func TestWriteDailyCSV_KeepsLiteralText(t *testing.T) {
	rows := []models.DailyReportRow{{
		DailyReport: models.DailyReport{
			ReportDate:    "2024-03-05",
			MaterialsUsed: "Tom & Jerry, pages 3<5",
			Comments:      `He said "great" & left`,
			WeekNumber:    1,
			MonthYear:     "March 2024",
			UpdatedAt:     time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		},
		TeacherName: "Jane Doe",
		ClassName:   "Grade 3",
	}}
	var buf bytes.Buffer
	if err := reports.WriteDailyCSV(&buf, rows); err != nil {
		t.Fatalf("WriteDailyCSV failed: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records: got %d, want 2", len(recs))
	}
	if recs[1][5] != "Tom & Jerry, pages 3<5" {
		t.Errorf("materials: got %q", recs[1][5])
	}
	if recs[1][7] != `He said "great" & left` {
		t.Errorf("comments: got %q", recs[1][7])
	}
}

func TestWriteWeeklyCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := reports.WriteWeeklyCSV(&buf, nil); err != nil {
		t.Fatalf("WriteWeeklyCSV failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Week,Month,Teacher,Class,") {
		t.Errorf("header: got %q", buf.String())
	}
}
