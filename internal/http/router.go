package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	rec.Header().Set("X-Request-Id", requestID)

	r.mux.ServeHTTP(rec, req)

	r.logger.Info("http request",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)))
}

// RegisterClientRoutes wires the onboarding API. Paths are the ones the
// existing frontend calls, plus the newer status/activation/export routes.
func (r *Router) RegisterClientRoutes(h *ClientsHandler) {
	// register
	r.Handle("/api/clientes", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Register(w, req)
	})

	// status / activation: /api/clientes/{id}/status, /api/clientes/{id}/verificar
	r.Handle("/api/clientes/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/clientes/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch {
		case parts[1] == "status" && req.Method == http.MethodPatch:
			h.SetStatus(w, req, parts[0])
		case parts[1] == "verificar" && req.Method == http.MethodPost:
			h.Activate(w, req, parts[0])
		case parts[1] == "status" || parts[1] == "verificar":
			w.WriteHeader(http.StatusMethodNotAllowed)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// listing
	r.Handle("/api/listagem", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.List(w, req)
	})
	r.Handle("/api/listagem/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Export(w, req)
	})

	// edit
	r.Handle("/api/editClient/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(req.URL.Path, "/api/editClient/")
		h.Update(w, req, id)
	})

	// delete
	r.Handle("/api/deleteCliente/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(req.URL.Path, "/api/deleteCliente/")
		h.Delete(w, req, id)
	})
}

// RegisterUserRoutes wires the panel-operator registration endpoint.
func (r *Router) RegisterUserRoutes(h *UsersHandler) {
	r.Handle("/api/usuarios", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Register(w, req)
	})
}
