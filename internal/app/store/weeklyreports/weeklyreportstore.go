// Package weeklyreportstore persists weekly reports, one per teacher per
// (week number, month) label.
package weeklyreportstore

import (
	"context"

	"github.com/dalemusser/readinglog/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName     = "weekly_reports"
	accountsCollection = "accounts"
)

type MongoStore struct {
	c *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{c: db.Collection(CollectionName)}
}

// Upsert stores r keyed on (TeacherID, WeekNumber, MonthYear). On a replace
// the original ID and SubmittedAt are kept.
func (s *MongoStore) Upsert(ctx context.Context, r models.WeeklyReport) (models.WeeklyReport, error) {
	filter := bson.M{"teacher_id": r.TeacherID, "week_number": r.WeekNumber, "month_year": r.MonthYear}
	update := bson.M{
		"$set": bson.M{
			"active_readers":           r.ActiveReaders,
			"students_needing_support": r.StudentsNeedingSupport,
			"common_challenges":        r.CommonChallenges,
			"strategies_next_week":     r.StrategiesNextWeek,
			"updated_at":               r.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":          r.ID,
			"submitted_at": r.SubmittedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.WeeklyReport
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if wafflemongo.IsDup(err) {
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	}
	if err != nil {
		return models.WeeklyReport{}, err
	}
	return out, nil
}

// ListByTeacher returns the teacher's most recently submitted reports.
func (s *MongoStore) ListByTeacher(ctx context.Context, teacherID string, limit int64) ([]models.WeeklyReport, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"teacher_id": teacherID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.WeeklyReport{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every report joined with its author, newest first.
// Reports whose author no longer exists are skipped.
func (s *MongoStore) ListAll(ctx context.Context) ([]models.WeeklyReportRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         accountsCollection,
			"localField":   "teacher_id",
			"foreignField": "_id",
			"as":           "teacher",
		}}},
		{{Key: "$unwind", Value: "$teacher"}},
		{{Key: "$addFields", Value: bson.M{
			"teacher_name": "$teacher.full_name",
			"class_name":   "$teacher.assigned_class",
		}}},
		{{Key: "$project", Value: bson.M{"teacher": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "submitted_at", Value: -1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.WeeklyReportRow{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

