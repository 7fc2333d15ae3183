package users

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// CollectionName is the collection holding user documents.
const CollectionName = "users"

// ErrListUsers is returned when users cannot be read from storage.
var ErrListUsers = errors.New("failed to list users")

// User is a registered site user.
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string        `bson:"name" json:"name"`
	Email     string        `bson:"email" json:"email"`
	CreatedAt time.Time     `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt,omitempty" json:"updatedAt"`
}

// Repository reads users.
type Repository interface {
	List(ctx context.Context) ([]User, error)
}

// MongoRepository is a Repository over a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository returns a repository over the users collection of db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// List returns every user.
func (r *MongoRepository) List(ctx context.Context) ([]User, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Join(ErrListUsers, err)
	}

	users := []User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, errors.Join(ErrListUsers, err)
	}
	return users, nil
}
