package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/cardflow/internal/logging"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/aretw0/cardflow/pkg/schema"
	"github.com/aretw0/cardflow/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Server serves the cardflow API over a GraphService.
type Server struct {
	Service  ports.GraphService
	Sessions *session.Manager
	Streams  *StreamManager
	Version  string
	Logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithSessions enables the /sessions endpoints.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithVersion sets the application version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates a new HTTP handler for the service.
// Requests are checked against the embedded OpenAPI document before routing.
func NewHandler(svc ports.GraphService, opts ...Option) (http.Handler, error) {
	server := &Server{
		Service: svc,
		Streams: NewStreamManager(),
		Version: "dev",
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Logger == nil {
		server.Logger = logging.NewNop()
	}
	server.Streams.logger = server.Logger

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc, server.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build request validator: %w", err)
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", server.GetHealth)
		r.Get("/info", server.GetInfo)
		r.Get("/cards", server.ListCards)
		r.Get("/cards/{cardId}", server.GetCard)
		r.Get("/events", server.SubscribeEvents)

		r.Route("/graphs", func(r chi.Router) {
			r.Post("/validate", server.ValidateGraph)
			r.Post("/compile", server.CompileGraph)
			r.Post("/layout", server.LayoutGraph)
			r.Post("/optimize", server.OptimizeGraph)
			r.Post("/mermaid", server.MermaidGraph)
			r.Post("/run", server.RunGraph)
		})

		if server.Sessions != nil {
			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", server.ListSessions)
				r.Get("/{sessionId}", server.GetSession)
				r.Put("/{sessionId}", server.StartSession)
				r.Delete("/{sessionId}", server.DeleteSession)
				r.Post("/{sessionId}/edits", server.EditSession)
				r.Post("/{sessionId}/undo", server.UndoSession)
			})
		}
	})
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>cardflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, s.Logger, http.StatusOK, map[string]string{
		"app":         "cardflow-http",
		"version":     strings.TrimSpace(s.Version),
		"api_version": apiVersion,
	})
}

// CardInfo is the public description of a card.
type CardInfo struct {
	Meta      domain.CardMeta      `json:"meta"`
	Signature domain.CardSignature `json:"signature"`
	// Schema maps parameter names to their type names, e.g. "enum(lp|hp)".
	Schema schema.Schema `json:"schema"`
}

func cardInfo(c domain.Card) CardInfo {
	sig := c.Signature()
	return CardInfo{Meta: c.Meta(), Signature: sig, Schema: schema.FromParameters(sig.Parameters)}
}

// ListCards handles the GET /cards request.
func (s *Server) ListCards(w http.ResponseWriter, r *http.Request) {
	resolver := s.Service.Resolver()
	ids := s.Service.CardIDs()
	out := make([]CardInfo, 0, len(ids))
	for _, id := range ids {
		if c, ok := resolver.Resolve(id); ok {
			out = append(out, cardInfo(c))
		}
	}
	writeJSON(w, s.Logger, http.StatusOK, out)
}

// GetCard handles the GET /cards/{cardId} request.
func (s *Server) GetCard(w http.ResponseWriter, r *http.Request) {
	var cardID string
	if err := bindPath(r, "cardId", &cardID); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, ok := s.Service.Resolver().Resolve(cardID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", domain.ErrCardNotFound, cardID))
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, cardInfo(c))
}

// -- Helpers --

func bindPath(r *http.Request, name string, dest *string) error {
	return runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNothingToUndo),
		errors.Is(err, domain.ErrDuplicateNode),
		errors.Is(err, domain.ErrDuplicateEdge),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrEdgeNotFound):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCycle):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrInvalidEdit), errors.Is(err, session.ErrInvalidSessionID):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
