package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"shoescout/internal/model"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Integration tests against a real mongod. Set MONGO_TEST_URI to run, e.g.
//
//	MONGO_TEST_URI=mongodb://localhost:27017 go test ./internal/repository/
func testRepo(t *testing.T) UserRepository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	db := client.Database(fmt.Sprintf("shoescout_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() { db.Drop(context.Background()) })

	require.NoError(t, EnsureUserIndexes(ctx, db))
	return NewUserRepo(db)
}

func TestUpsertShoeSizeCreatesAndUpdates(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	user, err := repo.UpsertShoeSize(ctx, "auth0|size", 9.5)
	require.NoError(t, err)
	require.NotNil(t, user.ShoeSize)
	require.Equal(t, 9.5, *user.ShoeSize)

	user, err = repo.UpsertShoeSize(ctx, "auth0|size", 10)
	require.NoError(t, err)
	require.Equal(t, 10.0, *user.ShoeSize)

	// A second subject must not collide with the first.
	other, err := repo.UpsertShoeSize(ctx, "auth0|other", 8)
	require.NoError(t, err)
	require.Equal(t, "auth0|other", other.Auth0ID)
}

func TestGetByAuth0IDMissingUser(t *testing.T) {
	repo := testRepo(t)

	user, err := repo.GetByAuth0ID(context.Background(), "auth0|nobody")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestSavePreferencesReplacesList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	user, err := repo.SavePreferences(ctx, "auth0|prefs", []string{"Nike", "Adidas"})
	require.NoError(t, err)
	require.Equal(t, []string{"Nike", "Adidas"}, user.Preferences)

	user, err = repo.SavePreferences(ctx, "auth0|prefs", []string{"Puma"})
	require.NoError(t, err)
	require.Equal(t, []string{"Puma"}, user.Preferences)
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	shoe := model.FavoriteShoe{Title: "Nike Dunk Low", Brand: "Nike", SKU: "DD1391-100"}

	user, err := repo.AddFavorite(ctx, "auth0|favs", shoe)
	require.NoError(t, err)
	require.Len(t, user.Favorites, 1)

	user, err = repo.AddFavorite(ctx, "auth0|favs", shoe)
	require.NoError(t, err)
	require.Len(t, user.Favorites, 1)

	user, err = repo.AddFavorite(ctx, "auth0|favs", model.FavoriteShoe{Title: "Samba", Brand: "Adidas"})
	require.NoError(t, err)
	require.Len(t, user.Favorites, 2)
}

func TestRemoveFavorite(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.AddFavorite(ctx, "auth0|rm", model.FavoriteShoe{Title: "Nike Dunk Low"})
	require.NoError(t, err)

	user, err := repo.RemoveFavorite(ctx, "auth0|rm", "Nike Dunk Low")
	require.NoError(t, err)
	require.Empty(t, user.Favorites)

	// Removing an absent title is a no-op, not an error.
	user, err = repo.RemoveFavorite(ctx, "auth0|rm", "Nike Dunk Low")
	require.NoError(t, err)
	require.Empty(t, user.Favorites)
}

func TestGetFavoritesMissingUser(t *testing.T) {
	repo := testRepo(t)

	favorites, err := repo.GetFavorites(context.Background(), "auth0|nobody")
	require.NoError(t, err)
	require.NotNil(t, favorites)
	require.Empty(t, favorites)
}

func TestLegacyUsernameRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	created, err := repo.CreateByUsername(ctx, "jordanfan", 10.5)
	require.NoError(t, err)
	require.Equal(t, "jordanfan", created.Username)

	// Legacy users have no auth0 subject; any number of them must coexist
	// under the unique auth0_id index.
	_, err = repo.CreateByUsername(ctx, "sneakerhead", 9)
	require.NoError(t, err)

	fetched, err := repo.GetByUsername(ctx, "jordanfan")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, 10.5, *fetched.ShoeSize)

	missing, err := repo.GetByUsername(ctx, "ghost")
	require.NoError(t, err)
	require.Nil(t, missing)
}
