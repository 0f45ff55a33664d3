package service

import (
	"context"
	"errors"

	"shoescout/internal/model"
	"shoescout/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type UserService interface {
	GetShoeSize(ctx context.Context, auth0ID string) (*model.User, error)
	SaveShoeSize(ctx context.Context, auth0ID string, size float64) (*model.User, error)
	GetPreferences(ctx context.Context, auth0ID string) ([]string, error)
	SavePreferences(ctx context.Context, auth0ID string, preferences []string) (*model.User, error)
	GetFavorites(ctx context.Context, auth0ID string) ([]model.FavoriteShoe, error)
	AddFavorite(ctx context.Context, auth0ID string, shoe model.FavoriteShoe) (*model.User, error)
	RemoveFavorite(ctx context.Context, auth0ID, title string) (*model.User, error)

	CreateLegacyUser(ctx context.Context, username string, shoeSize float64) (*model.User, error)
	GetLegacyUser(ctx context.Context, username string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetShoeSize(ctx context.Context, auth0ID string) (*model.User, error) {
	u, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.ShoeSize == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) SaveShoeSize(ctx context.Context, auth0ID string, size float64) (*model.User, error) {
	return s.userRepo.UpsertShoeSize(ctx, auth0ID, size)
}

func (s *userService) GetPreferences(ctx context.Context, auth0ID string) ([]string, error) {
	u, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Preferences == nil {
		return []string{}, nil
	}
	return u.Preferences, nil
}

func (s *userService) SavePreferences(ctx context.Context, auth0ID string, preferences []string) (*model.User, error) {
	return s.userRepo.SavePreferences(ctx, auth0ID, preferences)
}

func (s *userService) GetFavorites(ctx context.Context, auth0ID string) ([]model.FavoriteShoe, error) {
	return s.userRepo.GetFavorites(ctx, auth0ID)
}

func (s *userService) AddFavorite(ctx context.Context, auth0ID string, shoe model.FavoriteShoe) (*model.User, error) {
	return s.userRepo.AddFavorite(ctx, auth0ID, shoe)
}

func (s *userService) RemoveFavorite(ctx context.Context, auth0ID, title string) (*model.User, error) {
	u, err := s.userRepo.RemoveFavorite(ctx, auth0ID, title)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) CreateLegacyUser(ctx context.Context, username string, shoeSize float64) (*model.User, error) {
	return s.userRepo.CreateByUsername(ctx, username, shoeSize)
}

func (s *userService) GetLegacyUser(ctx context.Context, username string) (*model.User, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
