package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farmfreshconnect/farmfresh-backend/api/controllers"
	"github.com/farmfreshconnect/farmfresh-backend/api/middleware"
	"github.com/farmfreshconnect/farmfresh-backend/internal/auth"
	"github.com/farmfreshconnect/farmfresh-backend/internal/cart"
	checkoutsvc "github.com/farmfreshconnect/farmfresh-backend/internal/checkout"
	"github.com/farmfreshconnect/farmfresh-backend/internal/listings"
	"github.com/farmfreshconnect/farmfresh-backend/internal/orders"
	"github.com/farmfreshconnect/farmfresh-backend/internal/profile"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/auth/session"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/config"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	SessionChecker  session.AccessSessionChecker
	Pingers         map[string]controllers.Pinger
	MetricsGatherer prometheus.Gatherer

	AuthService     auth.Service
	ProfileService  profile.Service
	ListingsService listings.Service
	CartService     cart.Service
	CheckoutService checkoutsvc.Service
	OrdersService   orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.ExtraCORSOrigins...),
	)

	authn := middleware.Auth(cfg.JWT, deps.SessionChecker, logg)
	requireFarmer := middleware.RequireAccountType(enums.AccountTypeFarmer, logg)
	requireBuyer := middleware.RequireAccountType(enums.AccountTypeBuyer, logg)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(authn).Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Get("/api/v1/session", controllers.SessionState(cfg.JWT, deps.ProfileService, logg))

	r.Route("/api/v1/profile", func(r chi.Router) {
		r.Use(authn)
		r.Get("/", controllers.ProfileGet(deps.ProfileService, logg))
		r.Post("/complete", controllers.ProfileComplete(deps.ProfileService, logg))
	})

	r.Route("/api/v1/listings", func(r chi.Router) {
		r.Get("/", controllers.ListingBrowse(deps.ListingsService, logg))
		r.Get("/{listingID}", controllers.ListingGet(deps.ListingsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authn, requireFarmer)
			r.Get("/mine", controllers.ListingMine(deps.ListingsService, logg))
			r.Post("/", controllers.ListingCreate(deps.ListingsService, logg))
			r.Put("/{listingID}", controllers.ListingUpdate(deps.ListingsService, logg))
			r.Delete("/{listingID}", controllers.ListingDelete(deps.ListingsService, logg))
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(authn, requireBuyer)
		r.Get("/", controllers.CartView(deps.CartService, logg))
		r.Post("/", controllers.CartAdd(deps.CartService, logg))
		r.Delete("/{entryID}", controllers.CartRemove(deps.CartService, logg))
	})

	r.With(authn, requireBuyer).
		Post("/api/v1/checkout", controllers.Checkout(deps.CheckoutService, logg))

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(authn)
		r.With(requireBuyer).Get("/mine", controllers.BuyerOrders(deps.OrdersService, logg))
		r.With(requireFarmer).Get("/received", controllers.FarmerOrders(deps.OrdersService, logg))
		r.With(requireFarmer).Patch("/{orderID}/status", controllers.OrderAdvanceStatus(deps.OrdersService, logg))
	})

	return r
}
