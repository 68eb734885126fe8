package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"movi/internal/handlers"
)

// Routes advertised by the health endpoint.
var PublicRoutes = []string{
	"/getmovies?name=...",
	"/getmoviesfromuser?id=...",
	"/api/search/movie",
	"/api/search/movie/simple",
	"/api/title/movie/{id}",
}

type Handlers struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Friends *handlers.FriendHandler
	Library *handlers.LibraryHandler
	Movies  *handlers.MovieHandler
	Health  *handlers.HealthHandler
}

func New(h *Handlers, logger *logrus.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health.Health)

	r.Post("/register", h.Auth.Register)
	r.Post("/login", h.Auth.Login)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.Users.List)
		r.Post("/", h.Users.Create)
		r.Get("/by-email/{email}", h.Users.GetByEmail)
		r.Delete("/{userId}", h.Users.Delete)
		r.Post("/{userId}/activity", h.Users.RecordActivity)
		r.Get("/{userId}/activity", h.Users.OwnFeed)
		r.Get("/{userId}/activity/friends", h.Users.NetworkFeed)
	})

	r.Get("/followers/user/{userId}", h.Friends.Followers)
	r.Get("/following/user/{userId}", h.Friends.Following)
	r.Post("/followers/user/{userId}/usertoadd/{targetId}", h.Friends.AddFollower)
	r.Post("/following/user/{userId}/usertoadd/{targetId}", h.Friends.AddFollowing)
	r.Delete("/followers/user/{userId}/usertoremove/{targetId}", h.Friends.RemoveFollower)
	r.Delete("/following/user/{userId}/usertoremove/{targetId}", h.Friends.RemoveFollowing)

	r.Get("/book", h.Library.SearchBooks)
	r.Get("/book/{title}", h.Library.SearchBooks)
	r.Get("/read/user/{userId}", h.Library.ReadBooks)
	r.Get("/toberead/user/{userId}", h.Library.ToBeReadBooks)
	r.Post("/read/user/{userId}/book/{bookId}", h.Library.AddReadBook)
	r.Post("/toberead/user/{userId}/book/{bookId}", h.Library.AddToBeReadBook)
	r.Delete("/read/user/{userId}/book/{bookId}", h.Library.RemoveReadBook)
	r.Delete("/toberead/user/{userId}/book/{bookId}", h.Library.RemoveToBeReadBook)

	r.Post("/createbookreview", h.Library.CreateBookReview)
	r.Post("/createmoviereview", h.Library.CreateMovieReview)
	r.Get("/reviews/user/{userId}", h.Library.ListReviews)
	r.Delete("/reviews/{kind}/{reviewId}", h.Library.DeleteReview)

	r.Get("/getmovies", h.Movies.Search)
	r.Get("/getmoviesfromuser", h.Movies.WatchedByQuery)
	r.Get("/api/search/movie", h.Movies.SearchRaw)
	r.Get("/api/search/movie/simple", h.Movies.SearchSimple)
	r.Get("/api/title/movie/{id}", h.Movies.Details)

	r.Get("/watched/user/{userId}", h.Movies.WatchedMovies)
	r.Get("/watchlater/user/{userId}", h.Movies.WatchLaterMovies)
	r.Post("/watched/user/{userId}/movie/{movieId}", h.Movies.AddWatchedMovie)
	r.Post("/watchlater/user/{userId}/movie/{movieId}", h.Movies.AddWatchLaterMovie)
	r.Delete("/watched/user/{userId}/movie/{movieId}", h.Movies.RemoveWatchedMovie)
	r.Delete("/watchlater/user/{userId}/movie/{movieId}", h.Movies.RemoveWatchLaterMovie)

	return r
}
