package handler

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/gorilla/mux"

	"github.com/yusufkecer/bmi-tracker/internal/middleware"
	"github.com/yusufkecer/bmi-tracker/internal/service"
)

type RouterConfig struct {
	Tracker        *service.Tracker
	Users          *service.UserService
	Tokens         *middleware.SessionTokens
	APIKey         string
	AllowedOrigins string
	TrustedProxies []netip.Prefix
}

func NewRouter(cfg RouterConfig) *mux.Router {
	userHandler := NewUserHandler(cfg.Tracker, cfg.Tokens)
	bmiHandler := NewBMIHandler(cfg.Tracker)

	lookupRL := middleware.NewRateLimiter(10, time.Minute, cfg.TrustedProxies...)

	r := mux.NewRouter()

	// RequestLogger → CORS → security headers → 1 MiB body cap
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
			next.ServeHTTP(w, r)
		})
	})

	r.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.APIKey(cfg.APIKey))
	api.Use(middleware.SessionMiddleware(cfg.Tokens, cfg.Users))

	api.HandleFunc("/users", userHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/sessions", lookupRL.Middleware(http.HandlerFunc(userHandler.Load))).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions", userHandler.Logout).Methods(http.MethodDelete, http.MethodOptions)

	api.HandleFunc("/bmi", bmiHandler.Calculate).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/bmi/latest", bmiHandler.Latest).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bmi/history", bmiHandler.History).Methods(http.MethodGet, http.MethodOptions)

	return r
}
