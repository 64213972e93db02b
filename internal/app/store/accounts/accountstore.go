// Package accountstore persists teacher and administrator accounts.
// MongoStore and PGStore implement the same contract:
//
//   - usernames are unique on their folded form (username_ci)
//   - teacher-scoped operations never match the admin class
//   - deleting a teacher removes that teacher's reports
package accountstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared with the report stores and index setup.
const (
	CollectionName   = "accounts"
	dailyCollection  = "daily_reports"
	weeklyCollection = "weekly_reports"
)

// MongoStore keeps accounts in MongoDB.
type MongoStore struct {
	c      *mongo.Collection
	daily  *mongo.Collection
	weekly *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		c:      db.Collection(CollectionName),
		daily:  db.Collection(dailyCollection),
		weekly: db.Collection(weeklyCollection),
	}
}

// notAdmin restricts a filter to teacher accounts.
func notAdmin(f bson.M) bson.M {
	f["assigned_class"] = bson.M{"$ne": models.AdminClass}
	return f
}

// Create inserts a. The caller sets every field, ID included.
func (s *MongoStore) Create(ctx context.Context, a models.Account) error {
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return apperr.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (models.Account, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername looks up by the folded username.
func (s *MongoStore) GetByUsername(ctx context.Context, usernameCI string) (models.Account, error) {
	return s.findOne(ctx, bson.M{"username_ci": usernameCI})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (models.Account, error) {
	var a models.Account
	err := s.c.FindOne(ctx, filter).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Account{}, apperr.ErrNotFound
	}
	return a, err
}

// ListTeachers returns every non-admin account ordered by full name.
func (s *MongoStore) ListTeachers(ctx context.Context) ([]models.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, notAdmin(bson.M{}), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Account{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTeacher applies ch to the teacher id and returns the updated account.
func (s *MongoStore) UpdateTeacher(ctx context.Context, id string, ch models.AccountChanges) (models.Account, error) {
	set := bson.M{"updated_at": ch.UpdatedAt}
	if ch.FullName != nil {
		set["full_name"] = *ch.FullName
	}
	if ch.Username != nil {
		set["username"] = *ch.Username
		set["username_ci"] = *ch.UsernameCI
	}
	if ch.PasswordHash != nil {
		set["password_hash"] = *ch.PasswordHash
	}
	if ch.AssignedClass != nil {
		set["assigned_class"] = *ch.AssignedClass
	}

	var out models.Account
	err := s.c.FindOneAndUpdate(ctx,
		notAdmin(bson.M{"_id": id}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Account{}, apperr.ErrNotFound
	case wafflemongo.IsDup(err):
		return models.Account{}, apperr.ErrDuplicateUsername
	case err != nil:
		return models.Account{}, err
	}
	return out, nil
}

// SetPasswordHash replaces the password hash of any account.
func (s *MongoStore) SetPasswordHash(ctx context.Context, id, hash string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteTeacher removes the teacher and then the teacher's reports. Mongo
// has no cascading deletes, so a failure between the two steps can leave
// orphaned reports; admin listings skip reports without an author.
func (s *MongoStore) DeleteTeacher(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, notAdmin(bson.M{"_id": id}))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	if _, err := s.daily.DeleteMany(ctx, bson.M{"teacher_id": id}); err != nil {
		return err
	}
	if _, err := s.weekly.DeleteMany(ctx, bson.M{"teacher_id": id}); err != nil {
		return err
	}
	return nil
}

// UpsertAdmin makes sure an admin account with admin.UsernameCI exists.
// A new account takes every field of admin. An existing account keeps its
// ID, name and creation time but gets admin's password hash and the admin
// class. It reports whether the account was created.
func (s *MongoStore) UpsertAdmin(ctx context.Context, admin models.Account) (bool, error) {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"username_ci": admin.UsernameCI},
		bson.M{
			"$set": bson.M{
				"password_hash":  admin.PasswordHash,
				"assigned_class": models.AdminClass,
				"updated_at":     admin.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"_id":        admin.ID,
				"full_name":  admin.FullName,
				"username":   admin.Username,
				"created_at": admin.CreatedAt,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
