package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

type RouterOptions struct {
	ServiceName        string
	CORSAllowedOrigins []string
	// ExposeErrorDetail adds the wrapped cause to 500 responses. Off in prod.
	ExposeErrorDetail bool
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "tennis-club"
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerAuthRoutes(mux, handler, verifier)
	registerMemberRoutes(mux, handler, verifier)
	registerChallengeRoutes(mux, handler, verifier)
	registerMatchRoutes(mux, handler, verifier)
	registerAdminRoutes(mux, handler, verifier)

	return RequestTracing(opts.ServiceName,
		RequestLogging(logger,
			CORS(opts.CORSAllowedOrigins,
				ErrorDetail(opts.ExposeErrorDetail,
					recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
