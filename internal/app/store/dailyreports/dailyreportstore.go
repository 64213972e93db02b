// Package dailyreportstore persists daily reports. A teacher has one report
// per calendar date; Upsert replaces the content of an existing one.
package dailyreportstore

import (
	"context"

	"github.com/dalemusser/readinglog/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName     = "daily_reports"
	accountsCollection = "accounts"
)

type MongoStore struct {
	c *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{c: db.Collection(CollectionName)}
}

// Upsert stores r keyed on (TeacherID, ReportDate) and returns the stored
// report. On a replace the original ID and CreatedAt are kept.
func (s *MongoStore) Upsert(ctx context.Context, r models.DailyReport) (models.DailyReport, error) {
	filter := bson.M{"teacher_id": r.TeacherID, "report_date": r.ReportDate}
	update := bson.M{
		"$set": bson.M{
			"materials_used": r.MaterialsUsed,
			"new_words":      r.NewWords,
			"comments":       r.Comments,
			"week_number":    r.WeekNumber,
			"month_year":     r.MonthYear,
			"updated_at":     r.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        r.ID,
			"created_at": r.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.DailyReport
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if wafflemongo.IsDup(err) {
		// Two concurrent upserts raced on the unique index; the loser
		// retries and now matches the winner's document.
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	}
	if err != nil {
		return models.DailyReport{}, err
	}
	return out, nil
}

// ListByTeacher returns the teacher's most recent reports by date.
func (s *MongoStore) ListByTeacher(ctx context.Context, teacherID string, limit int64) ([]models.DailyReport, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "report_date", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"teacher_id": teacherID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.DailyReport{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every report joined with its author, newest date first.
// Reports whose author no longer exists are skipped.
func (s *MongoStore) ListAll(ctx context.Context) ([]models.DailyReportRow, error) {
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
		{{Key: "$sort", Value: bson.D{{Key: "report_date", Value: -1}, {Key: "created_at", Value: -1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.DailyReportRow{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

