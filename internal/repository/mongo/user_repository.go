package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portal/internal/domain"
	"portal/internal/repository"
)

const usersCollection = "users"

// userDocument is the stored shape of a user. Field names match the
// records written by earlier deployments of the portal.
type userDocument struct {
	ID             string    `bson:"id"`
	Username       string    `bson:"username"`
	Email          string    `bson:"email"`
	FullName       string    `bson:"full_name"`
	HashedPassword string    `bson:"hashed_password"`
	CreatedAt      time.Time `bson:"created_at"`
	IsActive       bool      `bson:"is_active"`
}

type UserRepository struct {
	client *mongo.Client
	users  *mongo.Collection
}

func NewUserRepository(client *mongo.Client, database string) *UserRepository {
	return &UserRepository{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}
}

// Init creates the unique username index that backs insert-if-absent.
func (r *UserRepository) Init(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.users.InsertOne(ctx, toDocument(user))
	return insertError(user.Username, err)
}

// insertError maps a duplicate key on the unique username index to ErrUserExists.
func insertError(username string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert user %q: %w", username, repository.ErrUserExists)
	}
	return fmt.Errorf("insert user: %w", err)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromDocument(doc), nil
}

func (r *UserRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func toDocument(user *domain.User) userDocument {
	return userDocument{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		FullName:       user.FullName,
		HashedPassword: user.PasswordHash,
		CreatedAt:      user.CreatedAt.UTC(),
		IsActive:       user.IsActive,
	}
}

func fromDocument(doc userDocument) *domain.User {
	return &domain.User{
		ID:           doc.ID,
		Username:     doc.Username,
		Email:        doc.Email,
		FullName:     doc.FullName,
		PasswordHash: doc.HashedPassword,
		IsActive:     doc.IsActive,
		CreatedAt:    doc.CreatedAt.UTC(),
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
