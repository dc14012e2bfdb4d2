package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/craftline/craftline/internal/config"
	"github.com/craftline/craftline/internal/handlers"
	"github.com/craftline/craftline/internal/models"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)

	r.NotFoundHandler = jsonStatus(http.StatusNotFound, "not found")
	r.MethodNotAllowedHandler = jsonStatus(http.StatusMethodNotAllowed, "method not allowed")

	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", h.Register).Methods("POST").Name("auth.register")
	api.HandleFunc("/auth/login", h.Login).Methods("POST").Name("auth.login")
	api.HandleFunc("/auth/forgot-password", h.ForgotPassword).Methods("POST").Name("auth.forgot_password")
	api.HandleFunc("/auth/reset-password", h.ResetPassword).Methods("POST").Name("auth.reset_password")
	api.HandleFunc("/products", h.ListProducts).Methods("GET").Name("products.list")
	api.HandleFunc("/products/{id}", h.GetProduct).Methods("GET").Name("products.get")
	api.HandleFunc("/products/{id}/ratings", h.ListProductRatings).Methods("GET").Name("products.ratings.list")

	// Any authenticated user
	authed := api.NewRoute().Subrouter()
	authed.Use(h.RequireAuth)
	authed.HandleFunc("/me", h.GetProfile).Methods("GET").Name("me.get")
	authed.HandleFunc("/me", h.UpdateProfile).Methods("PUT").Name("me.update")
	authed.HandleFunc("/hires", h.ListMyHires).Methods("GET").Name("hires.list")

	// Customer routes
	customer := api.NewRoute().Subrouter()
	customer.Use(h.RequireAuth)
	customer.Use(h.RequireRole(models.RoleCustomer))
	customer.HandleFunc("/orders", h.PlaceOrder).Methods("POST").Name("orders.place")
	customer.HandleFunc("/orders", h.ListMyOrders).Methods("GET").Name("orders.list")
	customer.HandleFunc("/products/{id}/ratings", h.RateProduct).Methods("POST").Name("products.ratings.create")
	customer.HandleFunc("/returns", h.InitiateReturn).Methods("POST").Name("returns.initiate")
	customer.HandleFunc("/returns", h.ListMyReturns).Methods("GET").Name("returns.list")
	customer.HandleFunc("/returns/{id}/cancel", h.CancelReturn).Methods("POST").Name("returns.cancel")
	customer.HandleFunc("/hires", h.RequestHire).Methods("POST").Name("hires.request")

	// Seller and designer catalogs
	seller := api.PathPrefix("/seller").Subrouter()
	seller.Use(h.RequireAuth)
	seller.Use(h.RequireRole(models.RoleSeller, models.RoleDesigner))
	seller.HandleFunc("/products", h.CreateProduct).Methods("POST").Name("seller.products.create")
	seller.HandleFunc("/products", h.ListMyProducts).Methods("GET").Name("seller.products.list")
	seller.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PUT").Name("seller.products.update")
	seller.HandleFunc("/products/{id}/image", h.UploadProductImage).Methods("POST").Name("seller.products.image")
	seller.HandleFunc("/items", h.ListSellerItems).Methods("GET").Name("seller.items.list")
	seller.HandleFunc("/items/{id}/status", h.UpdateItemStatus).Methods("PUT").Name("seller.items.status")
	seller.HandleFunc("/returns", h.ListSellerReturns).Methods("GET").Name("seller.returns.list")
	seller.HandleFunc("/returns/{id}/approve", h.SellerApproveReturn).Methods("POST").Name("seller.returns.approve")
	seller.HandleFunc("/returns/{id}/reject", h.SellerRejectReturn).Methods("POST").Name("seller.returns.reject")

	// Designer commissions
	designer := api.PathPrefix("/designer").Subrouter()
	designer.Use(h.RequireAuth)
	designer.Use(h.RequireRole(models.RoleDesigner))
	designer.HandleFunc("/hires/{id}/decide", h.DecideHire).Methods("POST").Name("designer.hires.decide")
	designer.HandleFunc("/hires/{id}/complete", h.CompleteHire).Methods("POST").Name("designer.hires.complete")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.RequireAuth)
	admin.Use(h.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/returns/{id}/approve", h.AdminApproveReturn).Methods("POST").Name("admin.returns.approve")
	admin.HandleFunc("/returns/{id}/complete-refund", h.AdminCompleteRefund).Methods("POST").Name("admin.returns.complete_refund")

	return r
}

func jsonStatus(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
	})
}
