// Package reports implements daily and weekly report submission and the
// teacher and admin listings.
package reports

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/app/system/inputval"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Listing limits for a teacher's own reports.
const (
	DailyListLimit  = 20
	WeeklyListLimit = 10
)

type DailyStore interface {
	Upsert(ctx context.Context, r models.DailyReport) (models.DailyReport, error)
	ListByTeacher(ctx context.Context, teacherID string, limit int64) ([]models.DailyReport, error)
	ListAll(ctx context.Context) ([]models.DailyReportRow, error)
}

type WeeklyStore interface {
	Upsert(ctx context.Context, r models.WeeklyReport) (models.WeeklyReport, error)
	ListByTeacher(ctx context.Context, teacherID string, limit int64) ([]models.WeeklyReport, error)
	ListAll(ctx context.Context) ([]models.WeeklyReportRow, error)
}

// AccountReader loads the author for Profile.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (models.Account, error)
}

type Service struct {
	daily    DailyStore
	weekly   WeeklyStore
	accounts AccountReader
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

// New builds a Service that labels reports in loc (UTC when nil).
func New(daily DailyStore, weekly WeeklyStore, accounts AccountReader, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		daily:    daily,
		weekly:   weekly,
		accounts: accounts,
		loc:      loc,
		now:      time.Now,
		log:      logger,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CurrentLabel is the week label for the present moment in the service's
// time zone.
func (s *Service) CurrentLabel() models.WeekLabel {
	return models.LabelFor(s.now().In(s.loc))
}

// DailyInput is a daily report as submitted.
type DailyInput struct {
	ReportDate    string `json:"reportDate" validate:"required,datetime=2006-01-02" label:"Report date"`
	MaterialsUsed string `json:"materialsUsed" validate:"required,max=5000" label:"Materials used"`
	NewWords      string `json:"newWords" validate:"max=5000" label:"New words"`
	Comments      string `json:"comments" validate:"max=5000" label:"Comments"`
}

// SubmitDaily stores the teacher's report for ReportDate, replacing an
// earlier one for the same date. The week label comes from the clock, not
// from ReportDate.
func (s *Service) SubmitDaily(ctx context.Context, teacherID string, in DailyInput) (string, error) {
	in.ReportDate = strings.TrimSpace(in.ReportDate)
	in.MaterialsUsed = clean(in.MaterialsUsed)
	in.NewWords = clean(in.NewWords)
	in.Comments = clean(in.Comments)
	if err := inputval.Validate(in).Err(); err != nil {
		return "", err
	}

	now := s.now()
	label := models.LabelFor(now.In(s.loc))
	r, err := s.daily.Upsert(ctx, models.DailyReport{
		ID:            uuid.NewString(),
		TeacherID:     teacherID,
		ReportDate:    in.ReportDate,
		MaterialsUsed: in.MaterialsUsed,
		NewWords:      in.NewWords,
		Comments:      in.Comments,
		WeekNumber:    label.WeekNumber,
		MonthYear:     label.MonthYear,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	})
	if err != nil {
		return "", apperr.Storage("reports.submit_daily", err)
	}
	s.log.Info("daily report saved",
		zap.String("teacher_id", teacherID),
		zap.String("report_id", r.ID),
		zap.String("report_date", r.ReportDate))
	return r.ID, nil
}

// WeeklyInput is a weekly report as submitted.
type WeeklyInput struct {
	ActiveReaders          string `json:"activeReaders" validate:"required,max=5000" label:"Active readers"`
	StudentsNeedingSupport string `json:"studentsNeedingSupport" validate:"required,max=5000" label:"Students needing support"`
	CommonChallenges       string `json:"commonChallenges" validate:"required,max=5000" label:"Common challenges"`
	StrategiesNextWeek     string `json:"strategiesNextWeek" validate:"required,max=5000" label:"Strategies for next week"`
}

// SubmitWeekly stores the teacher's report for the current week, replacing
// an earlier one for the same week.
func (s *Service) SubmitWeekly(ctx context.Context, teacherID string, in WeeklyInput) (string, error) {
	in.ActiveReaders = clean(in.ActiveReaders)
	in.StudentsNeedingSupport = clean(in.StudentsNeedingSupport)
	in.CommonChallenges = clean(in.CommonChallenges)
	in.StrategiesNextWeek = clean(in.StrategiesNextWeek)
	if err := inputval.Validate(in).Err(); err != nil {
		return "", err
	}

	now := s.now()
	label := models.LabelFor(now.In(s.loc))
	r, err := s.weekly.Upsert(ctx, models.WeeklyReport{
		ID:                     uuid.NewString(),
		TeacherID:              teacherID,
		WeekNumber:             label.WeekNumber,
		MonthYear:              label.MonthYear,
		ActiveReaders:          in.ActiveReaders,
		StudentsNeedingSupport: in.StudentsNeedingSupport,
		CommonChallenges:       in.CommonChallenges,
		StrategiesNextWeek:     in.StrategiesNextWeek,
		SubmittedAt:            now.UTC(),
		UpdatedAt:              now.UTC(),
	})
	if err != nil {
		return "", apperr.Storage("reports.submit_weekly", err)
	}
	s.log.Info("weekly report saved",
		zap.String("teacher_id", teacherID),
		zap.String("report_id", r.ID),
		zap.Int("week", r.WeekNumber),
		zap.String("month", r.MonthYear))
	return r.ID, nil
}

// ListDaily returns the teacher's 20 most recent daily reports.
func (s *Service) ListDaily(ctx context.Context, teacherID string) ([]models.DailyReport, error) {
	list, err := s.daily.ListByTeacher(ctx, teacherID, DailyListLimit)
	if err != nil {
		return nil, apperr.Storage("reports.list_daily", err)
	}
	return list, nil
}

// ListWeekly returns the teacher's 10 most recent weekly reports.
func (s *Service) ListWeekly(ctx context.Context, teacherID string) ([]models.WeeklyReport, error) {
	list, err := s.weekly.ListByTeacher(ctx, teacherID, WeeklyListLimit)
	if err != nil {
		return nil, apperr.Storage("reports.list_weekly", err)
	}
	return list, nil
}

func (s *Service) ListAllDaily(ctx context.Context) ([]models.DailyReportRow, error) {
	rows, err := s.daily.ListAll(ctx)
	if err != nil {
		return nil, apperr.Storage("reports.list_all_daily", err)
	}
	return rows, nil
}

func (s *Service) ListAllWeekly(ctx context.Context) ([]models.WeeklyReportRow, error) {
	rows, err := s.weekly.ListAll(ctx)
	if err != nil {
		return nil, apperr.Storage("reports.list_all_weekly", err)
	}
	return rows, nil
}

// clean trims s. Text is stored as typed; markup is only reduced when
// exported.
func clean(s string) string {
	return strings.TrimSpace(s)
}

// Profile is what the teacher dashboard shows about the signed-in teacher.
type Profile struct {
	FullName      string `json:"fullName"`
	Username      string `json:"username"`
	AssignedClass string `json:"assignedClass"`
	CurrentWeek   int    `json:"currentWeek"`
	MonthYear     string `json:"monthYear"`
}

func (s *Service) Profile(ctx context.Context, teacherID string) (Profile, error) {
	a, err := s.accounts.GetByID(ctx, teacherID)
	if err != nil {
		return Profile{}, apperr.Storage("reports.profile", err)
	}
	label := s.CurrentLabel()
	return Profile{
		FullName:      a.FullName,
		Username:      a.Username,
		AssignedClass: a.AssignedClass,
		CurrentWeek:   label.WeekNumber,
		MonthYear:     label.MonthYear,
	}, nil
}
