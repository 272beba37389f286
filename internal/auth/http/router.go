package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/datascope"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/obs"
	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/internal/auth/token"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	db    Pinger
	cache Pinger

	Tokens      token.Manager
	AuthService *service.AuthService
	UserService *service.UserService
	Online      *service.OnlineUsers
}

func NewRouter(buildVersion string, db, cache Pinger, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		db:           db,
		cache:        cache,
	}

	// Instrument sits innermost so it sees the pattern the mux matched.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		obs.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		authsdk.ErrInterfaceNotExist.WriteError(w)
	})
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticate resolves a bearer token through the active token manager and
// records both the identity and its data-scope context on ctx.
func (r *Router) authenticate(ctx context.Context, raw string) (context.Context, error) {
	info, err := r.Tokens.ParseAccessToken(ctx, raw)
	if err != nil {
		return nil, err
	}

	ctx = httpx.WithAuth(ctx, info.UserID, info.Authorities, info)
	ctx = datascope.WithAuthUser(ctx, datascope.FromAuthInfo(info))
	return ctx, nil
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.authenticate, writeAuthnError)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Online: r.Online}

	// POST /login - strict rate limit by IP and username (password guessing)
	r.Mux.Handle("POST /api/v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	// POST /refresh-token - moderate rate limit by IP
	r.Mux.Handle("POST /api/v1/auth/refresh-token",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// DELETE /logout - unauthenticated so a dead token can still log out
	r.Mux.Handle("DELETE /api/v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/v1/auth/online",
		httpx.Chain(http.HandlerFunc(h.HandleOnline),
			r.authn(),
			httpx.RequireAnyAuthority(domain.RoleAuthority(domain.SuperAdminRole)),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UserHandler{UserService: r.UserService, AuthService: r.AuthService}

	r.Mux.Handle("GET /api/v1/users/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	changePassword := httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
		r.authn(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.Mux.Handle("PUT /api/v1/users/me/password", changePassword)
	r.Mux.Handle("PUT /api/v1/users/password", changePassword)

	page := httpx.Chain(http.HandlerFunc(h.HandlePage),
		r.authn(),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.Mux.Handle("GET /api/v1/users/page", page)
	r.Mux.Handle("GET /api/v1/users", page)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.db, r.cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics",
		httpx.Chain(obs.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
