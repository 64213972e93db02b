package sessions

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the Mongo collection holding sessions. Its TTL index on
// expires_at is created by the indexes package.
const CollectionName = "sessions"

// MongoStore keeps sessions in MongoDB.
type MongoStore struct {
	c   *mongo.Collection
	now func() time.Time
}

// NewMongoStore returns a MongoStore over db's sessions collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{c: db.Collection(CollectionName), now: time.Now}
}

func (s *MongoStore) Create(ctx context.Context, sess Session) error {
	_, err := s.c.InsertOne(ctx, sess)
	return err
}

// Get filters on expires_at as well, since the TTL monitor only runs about
// once a minute.
func (s *MongoStore) Get(ctx context.Context, token string) (Session, error) {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{
		"_id":        token,
		"expires_at": bson.M{"$gt": s.now().UTC()},
	}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *MongoStore) Delete(ctx context.Context, token string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": token})
	return err
}

func (s *MongoStore) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": s.now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
