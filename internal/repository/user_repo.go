package repository

import (
	"context"
	"errors"
	"time"

	"shoescout/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	GetByAuth0ID(ctx context.Context, auth0ID string) (*model.User, error)
	UpsertShoeSize(ctx context.Context, auth0ID string, size float64) (*model.User, error)
	SavePreferences(ctx context.Context, auth0ID string, preferences []string) (*model.User, error)
	GetFavorites(ctx context.Context, auth0ID string) ([]model.FavoriteShoe, error)
	AddFavorite(ctx context.Context, auth0ID string, shoe model.FavoriteShoe) (*model.User, error)
	RemoveFavorite(ctx context.Context, auth0ID, title string) (*model.User, error)

	// Legacy username-keyed operations, kept for backward compatibility.
	CreateByUsername(ctx context.Context, username string, shoeSize float64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type userRepo struct {
	users *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepository {
	return &userRepo{users: db.Collection("users")}
}

// EnsureUserIndexes creates the unique auth0_id index. Called once at startup.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "auth0_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"auth0_id": bson.M{"$type": "string"}}),
	})
	return err
}

func (r *userRepo) GetByAuth0ID(ctx context.Context, auth0ID string) (*model.User, error) {
	var u model.User
	err := r.users.FindOne(ctx, bson.M{"auth0_id": auth0ID}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpsertShoeSize(ctx context.Context, auth0ID string, size float64) (*model.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"shoe_size": size, "updated_at": now},
		"$setOnInsert": bson.M{"auth0_id": auth0ID, "created_at": now},
	}
	return r.findOneAndUpdate(ctx, bson.M{"auth0_id": auth0ID}, update, true)
}

func (r *userRepo) SavePreferences(ctx context.Context, auth0ID string, preferences []string) (*model.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"preferences": preferences, "updated_at": now},
		"$setOnInsert": bson.M{"auth0_id": auth0ID, "created_at": now},
	}
	return r.findOneAndUpdate(ctx, bson.M{"auth0_id": auth0ID}, update, true)
}

func (r *userRepo) GetFavorites(ctx context.Context, auth0ID string) ([]model.FavoriteShoe, error) {
	u, err := r.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return []model.FavoriteShoe{}, nil
	}
	if u.Favorites == nil {
		return []model.FavoriteShoe{}, nil
	}
	return u.Favorites, nil
}

// AddFavorite is idempotent: the push is conditioned on the title not being
// present, so concurrent adds of the same shoe cannot produce duplicates.
func (r *userRepo) AddFavorite(ctx context.Context, auth0ID string, shoe model.FavoriteShoe) (*model.User, error) {
	now := time.Now().UTC()

	// Make sure the user document exists before the conditional push; the
	// push filter below would otherwise upsert a second document.
	_, err := r.users.UpdateOne(ctx,
		bson.M{"auth0_id": auth0ID},
		bson.M{"$setOnInsert": bson.M{"auth0_id": auth0ID, "created_at": now, "updated_at": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}

	_, err = r.users.UpdateOne(ctx,
		bson.M{"auth0_id": auth0ID, "favorites.title": bson.M{"$ne": shoe.Title}},
		bson.M{
			"$push": bson.M{"favorites": shoe},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return nil, err
	}

	return r.GetByAuth0ID(ctx, auth0ID)
}

func (r *userRepo) RemoveFavorite(ctx context.Context, auth0ID, title string) (*model.User, error) {
	update := bson.M{
		"$pull": bson.M{"favorites": bson.M{"title": title}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, bson.M{"auth0_id": auth0ID}, update, false)
}

func (r *userRepo) CreateByUsername(ctx context.Context, username string, shoeSize float64) (*model.User, error) {
	now := time.Now().UTC()
	u := model.User{
		Username:  username,
		ShoeSize:  &shoeSize,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.users.InsertOne(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M, upsert bool) (*model.User, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)
	var u model.User
	err := r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
