// Package indexes reconciles the MongoDB indexes the stores rely on.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup and is idempotent. Errors from every
collection are gathered so one bad index does not hide another.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, set := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(set.collection), set.models); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	collection string
	models     []mongo.IndexModel
}

func desired() []indexSet {
	return []indexSet{
		{"accounts", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "username_ci", Value: 1}},
				Options: options.Index().SetName("uniq_accounts_username_ci").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "assigned_class", Value: 1}, {Key: "full_name", Value: 1}},
				Options: options.Index().SetName("idx_accounts_class_name"),
			},
		}},
		{"daily_reports", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "report_date", Value: 1}},
				Options: options.Index().SetName("uniq_daily_teacher_date").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "report_date", Value: -1}},
				Options: options.Index().SetName("idx_daily_report_date"),
			},
		}},
		{"weekly_reports", []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "teacher_id", Value: 1},
					{Key: "week_number", Value: 1},
					{Key: "month_year", Value: 1},
				},
				Options: options.Index().SetName("uniq_weekly_teacher_week_month").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "submitted_at", Value: -1}},
				Options: options.Index().SetName("idx_weekly_teacher_submitted"),
			},
			{
				Keys:    bson.D{{Key: "submitted_at", Value: -1}},
				Options: options.Index().SetName("idx_weekly_submitted"),
			},
		}},
		{"sessions", []mongo.IndexModel{
			{
				// TTL: the server removes a session once expires_at passes.
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("ttl_sessions_expires_at").SetExpireAfterSeconds(0),
			},
			{
				Keys:    bson.D{{Key: "account_id", Value: 1}},
				Options: options.Index().SetName("idx_sessions_account"),
			},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile one collection                                                    */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

// spec is the comparable shape of an index: keys plus the options that
// matter to the stores.
type spec struct {
	name   string
	keys   string
	unique bool
	ttl    int32 // -1 when not a TTL index
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func desiredSpec(m mongo.IndexModel) spec {
	s := spec{keys: keySig(m.Keys.(bson.D)), ttl: -1}
	if m.Options != nil {
		if m.Options.Name != nil {
			s.name = *m.Options.Name
		}
		if m.Options.Unique != nil {
			s.unique = *m.Options.Unique
		}
		if m.Options.ExpireAfterSeconds != nil {
			s.ttl = *m.Options.ExpireAfterSeconds
		}
	}
	return s
}

func existingSpec(ex existingIndex) spec {
	s := spec{name: ex.Name, keys: keySig(ex.Key), ttl: -1}
	if ex.Unique != nil {
		s.unique = *ex.Unique
	}
	if ex.ExpireAfterSeconds != nil {
		s.ttl = *ex.ExpireAfterSeconds
	}
	return s
}

// sameOptions ignores the name; a rename is handled separately.
func sameOptions(a, b spec) bool {
	return a.unique == b.unique && a.ttl == b.ttl
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		want := desiredSpec(m)
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", want.name),
			zap.String("keys", want.keys),
			zap.Bool("unique", want.unique))

		if ex, ok := existing[want.keys]; ok {
			have := existingSpec(ex)
			if sameOptions(want, have) && (want.name == "" || want.name == have.name) {
				log.Debug("reusing existing index")
				continue
			}
			// Options or name differ: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", want.name, ex.Name, err))
				continue
			}
			log.Info("dropped index for recreation", zap.String("old_name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if want.unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index on %s (duplicates present)", want.name, want.keys))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", want.name, err))
			}
			log.Warn("index ensure failed", zap.Error(err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
