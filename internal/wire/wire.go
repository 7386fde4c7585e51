package wire

import (
	"net/http"

	"phone-repair/internal/adaptor"
	"phone-repair/internal/data/repository"
	"phone-repair/internal/usecase"
	"phone-repair/pkg/middleware"
	"phone-repair/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired router.
type App struct {
	Router *chi.Mux
}

// Wiring builds the services, handlers and routes.
func Wiring(repo *repository.Repository, deps usecase.Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, deps, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, deps, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	deps usecase.Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigin))
	r.Use(middleware.Metrics(deps.Metrics))

	guards := newGuards(repo, config, logger)

	wireAuth(r, handler.Auth, guards)
	wireUser(r, handler.User, guards)
	wireAvailability(r, handler.Availability, guards)
	wireCatalog(r, handler.Pricing, handler.Phone, guards)
	wireBooking(r, handler.Booking, guards)
	wirePayment(r, handler.Payment)
	wireListing(r, handler.Listing, guards)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if config.Metrics.Enabled && deps.Metrics != nil {
		r.Method(http.MethodGet, config.Metrics.Path, deps.Metrics.Handler())
	}

	return r
}

// guards bundles the auth middlewares shared by the route groups.
type guards struct {
	session  func(http.Handler) http.Handler
	optional func(http.Handler) http.Handler
	admin    func(http.Handler) http.Handler
}

func newGuards(repo *repository.Repository, config *utils.Config, log *zap.Logger) guards {
	return guards{
		session:  middleware.AuthSession(repo.Session, repo.User, log),
		optional: middleware.OptionalSession(repo.Session, repo.User, log),
		admin:    middleware.AdminAccess(repo.Session, repo.User, config.JWT.Secret, log),
	}
}
