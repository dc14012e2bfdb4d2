package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftline/craftline/internal/auth"
	"github.com/craftline/craftline/internal/config"
	"github.com/craftline/craftline/internal/logging"
	"github.com/craftline/craftline/internal/services"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// Handlers provides the HTTP handlers for the Craftline API.
type Handlers struct {
	config         *config.Config
	db             *pgxpool.Pool
	authenticator  auth.Authenticator
	accountService *services.AccountService
	productService *services.ProductService
	orderService   *services.OrderService
	returnService  *services.ReturnService
	ratingService  *services.RatingService
	hireService    *services.HireService
	logger         *slog.Logger
}

type Dependencies struct {
	Config         *config.Config
	DB             *pgxpool.Pool
	Authenticator  auth.Authenticator
	AccountService *services.AccountService
	ProductService *services.ProductService
	OrderService   *services.OrderService
	ReturnService  *services.ReturnService
	RatingService  *services.RatingService
	HireService    *services.HireService
	Logger         *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.Authenticator == nil {
		return nil, fmt.Errorf("handlers dependencies: authenticator is required")
	}
	if deps.AccountService == nil {
		return nil, fmt.Errorf("handlers dependencies: accountService is required")
	}
	if deps.ProductService == nil {
		return nil, fmt.Errorf("handlers dependencies: productService is required")
	}
	if deps.OrderService == nil {
		return nil, fmt.Errorf("handlers dependencies: orderService is required")
	}
	if deps.ReturnService == nil {
		return nil, fmt.Errorf("handlers dependencies: returnService is required")
	}
	if deps.RatingService == nil {
		return nil, fmt.Errorf("handlers dependencies: ratingService is required")
	}
	if deps.HireService == nil {
		return nil, fmt.Errorf("handlers dependencies: hireService is required")
	}

	return &Handlers{
		config:         deps.Config,
		db:             deps.DB,
		authenticator:  deps.Authenticator,
		accountService: deps.AccountService,
		productService: deps.ProductService,
		orderService:   deps.OrderService,
		returnService:  deps.ReturnService,
		ratingService:  deps.RatingService,
		hireService:    deps.HireService,
		logger:         logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (h *Handlers) respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}
