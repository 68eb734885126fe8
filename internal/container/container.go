package container

import (
	"context"
	"fmt"

	"movi/internal/cache"
	"movi/internal/config"
	"movi/internal/database"
	"movi/internal/handlers"
	"movi/internal/logger"
	"movi/internal/repository"
	"movi/internal/router"
	"movi/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Logger *logrus.Logger
	Router chi.Router

	Users      *services.UserService
	Feed       *services.FeedService
	Library    *services.LibraryService
	Movies     *services.MovieService
	TMDB       *services.TMDBClient
	OpenLib    *services.OpenLibraryClient
	UserRepo   repository.UserRepository
	ReviewRepo repository.ReviewRepository
}

func New(ctx context.Context) (*Container, error) {
	log := logger.Get()

	if err := database.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	cache.Init(ctx)

	db := database.Get()
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	tmdb := services.NewTMDBClient(&services.TMDBConfig{
		APIKey: config.TMDBKey(),
		Logger: log,
		Redis:  cache.Get(),
	})
	openLib := services.NewOpenLibraryClient(&services.OpenLibraryConfig{
		Logger: log,
		Redis:  cache.Get(),
	})

	userSvc := services.NewUserService(userRepo, log)
	feedSvc := services.NewFeedService(userRepo, activityRepo, log)
	librarySvc := services.NewLibraryService(userRepo, reviewRepo, activityRepo, openLib, tmdb, log)
	movieSvc := services.NewMovieService(userRepo, activityRepo, tmdb, log)

	h := &router.Handlers{
		Auth:    handlers.NewAuthHandler(userSvc, log),
		Users:   handlers.NewUserHandler(userSvc, feedSvc, log),
		Friends: handlers.NewFriendHandler(userSvc, log),
		Library: handlers.NewLibraryHandler(librarySvc, openLib, log),
		Movies:  handlers.NewMovieHandler(movieSvc, tmdb, log),
		Health:  handlers.NewHealthHandler(tmdb, router.PublicRoutes),
	}

	return &Container{
		Logger:     log,
		Router:     router.New(h, log),
		Users:      userSvc,
		Feed:       feedSvc,
		Library:    librarySvc,
		Movies:     movieSvc,
		TMDB:       tmdb,
		OpenLib:    openLib,
		UserRepo:   userRepo,
		ReviewRepo: reviewRepo,
	}, nil
}

func (c *Container) Close(ctx context.Context) {
	cache.Close()
	database.Close(ctx)
}
