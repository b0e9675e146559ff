package api

import (
	"net/http"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/gate"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// BasePath prefixes every account route.
const BasePath = "/public/v3"

// Options configures NewRouter.
type Options struct {
	Logger *zap.Logger

	// MetricsHandler is mounted ungated at /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter builds the HTTP surface over engine. Every account route runs
// behind g with its own policy.
func NewRouter(engine *goGate.Engine, g *gate.Gate, opts Options) *mux.Router {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{engine: engine, log: log.Named("api")}

	r := mux.NewRouter()
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler).Methods(http.MethodGet)
	}

	s := r.PathPrefix(BasePath).Subrouter()
	s.Handle("/account", g.Wrap(authorizedPolicy, http.HandlerFunc(h.getAccount))).Methods(http.MethodGet)
	s.Handle("/auth/register", g.Wrap(registerPolicy, http.HandlerFunc(h.register))).Methods(http.MethodPost)
	s.Handle("/account/sendemailverification", g.Wrap(authorizedPolicy, http.HandlerFunc(h.sendEmailVerification))).Methods(http.MethodPost)
	s.Handle("/account/verifyemail", g.Wrap(verifyEmailPolicy, http.HandlerFunc(h.verifyEmail))).Methods(http.MethodPost)
	s.Handle("/account/requestpasswordreset", g.Wrap(requestPasswordResetPolicy, http.HandlerFunc(h.requestPasswordReset))).Methods(http.MethodPost)
	s.Handle("/account/resetpassword", g.Wrap(resetPasswordPolicy, http.HandlerFunc(h.resetPassword))).Methods(http.MethodPost)
	s.Handle("/auth/login", g.Wrap(loginPolicy, http.HandlerFunc(h.login))).Methods(http.MethodPost)

	return r
}
