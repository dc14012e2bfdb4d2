package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/auth"
	"github.com/craftline/craftline/internal/crypto"
	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

// memReturnStore is just enough of services.ReturnStore to drive the
// handlers. Handler tests only exercise status mapping and response shape;
// transactional behavior is covered in the services package.
type memReturnStore struct {
	returns map[uuid.UUID]*models.ReturnRequest
	items   map[uuid.UUID]*models.OrderItem
	views   []*models.ReturnView
}

func newMemReturnStore() *memReturnStore {
	return &memReturnStore{
		returns: make(map[uuid.UUID]*models.ReturnRequest),
		items:   make(map[uuid.UUID]*models.OrderItem),
	}
}

func (s *memReturnStore) InTx(_ context.Context, fn func(tx services.ReturnTx) error) error {
	return fn(s)
}

func (s *memReturnStore) GetReturn(_ context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	r, ok := s.returns[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return r, nil
}

func (s *memReturnStore) GetUserContact(context.Context, uuid.UUID) (string, string, error) {
	return "Ada", "ada@example.com", nil
}

func (s *memReturnStore) ListBySeller(context.Context, uuid.UUID) ([]*models.ReturnView, error) {
	return s.views, nil
}

func (s *memReturnStore) ListByUser(context.Context, uuid.UUID) ([]*models.ReturnView, error) {
	return s.views, nil
}

func (s *memReturnStore) GetReturnForUpdate(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	return s.GetReturn(ctx, id)
}

func (s *memReturnStore) GetOrderItemForUpdate(_ context.Context, id uuid.UUID) (*models.OrderItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return item, nil
}

func (s *memReturnStore) CreateReturn(_ context.Context, r *models.ReturnRequest) error {
	r.ID = uuid.New()
	s.returns[r.ID] = r
	return nil
}

func (s *memReturnStore) UpdateReturn(_ context.Context, r *models.ReturnRequest) error {
	s.returns[r.ID] = r
	return nil
}

func (s *memReturnStore) UpdateOrderItem(_ context.Context, item *models.OrderItem) error {
	s.items[item.ID] = item
	return nil
}

func (s *memReturnStore) IncrementCredit(context.Context, uuid.UUID, decimal.Decimal) error {
	return nil
}

type returnHandlerFixture struct {
	handlers *Handlers
	store    *memReturnStore
	router   *mux.Router

	customerID uuid.UUID
	sellerID   uuid.UUID
	item       *models.OrderItem
}

func newReturnHandlerFixture(t *testing.T, principal *auth.Principal) *returnHandlerFixture {
	t.Helper()

	store := newMemReturnStore()
	encryptor, err := crypto.NewEncryptor("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}

	f := &returnHandlerFixture{
		store:      store,
		customerID: uuid.New(),
		sellerID:   uuid.New(),
	}
	f.item = &models.OrderItem{
		ID:          uuid.New(),
		UserID:      f.customerID,
		SellerID:    f.sellerID,
		ProductName: "walnut serving board",
		TotalAmount: decimal.RequireFromString("79.50"),
		Status:      models.ItemStatusFulfilled,
	}
	store.items[f.item.ID] = f.item

	f.handlers = &Handlers{
		authenticator: fakeAuthenticator{principal: principal},
		returnService: services.NewReturnService(store, encryptor, nil, discardLogger()),
		logger:        discardLogger(),
	}

	f.router = mux.NewRouter()
	f.router.Handle("/api/returns", f.handlers.RequireAuth(http.HandlerFunc(f.handlers.InitiateReturn))).Methods(http.MethodPost)
	f.router.Handle("/api/returns/{id}/approve", f.handlers.RequireAuth(http.HandlerFunc(f.handlers.SellerApproveReturn))).Methods(http.MethodPost)
	f.router.Handle("/api/admin/returns/{id}/approve", http.HandlerFunc(f.handlers.AdminApproveReturn)).Methods(http.MethodPost)
	f.router.Handle("/api/returns", f.handlers.RequireAuth(http.HandlerFunc(f.handlers.ListMyReturns))).Methods(http.MethodGet)
	f.router.Handle("/api/seller/returns", f.handlers.RequireAuth(http.HandlerFunc(f.handlers.ListSellerReturns))).Methods(http.MethodGet)
	return f
}

func (f *returnHandlerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestInitiateReturnHandler(t *testing.T) {
	t.Parallel()

	t.Run("creates the request", func(t *testing.T) {
		t.Parallel()
		f := newReturnHandlerFixture(t, nil)
		f.handlers.authenticator = fakeAuthenticator{principal: &auth.Principal{UserID: f.customerID, Role: models.RoleCustomer}}

		rec := f.do(http.MethodPost, "/api/returns",
			`{"order_item_id":"`+f.item.ID.String()+`","reason":"cracked","refund_method":"STORE_CREDIT"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var got models.ReturnRequest
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.Status != models.ReturnStateRequested {
			t.Errorf("status = %s, want %s", got.Status, models.ReturnStateRequested)
		}
	})

	t.Run("missing refund method is a 400", func(t *testing.T) {
		t.Parallel()
		f := newReturnHandlerFixture(t, &auth.Principal{UserID: uuid.New(), Role: models.RoleCustomer})

		rec := f.do(http.MethodPost, "/api/returns",
			`{"order_item_id":"`+f.item.ID.String()+`","reason":"cracked"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["message"] == "" {
			t.Errorf("body = %s, want a message field", rec.Body.String())
		}
	})

	t.Run("someone else's item is a 403", func(t *testing.T) {
		t.Parallel()
		f := newReturnHandlerFixture(t, &auth.Principal{UserID: uuid.New(), Role: models.RoleCustomer})

		rec := f.do(http.MethodPost, "/api/returns",
			`{"order_item_id":"`+f.item.ID.String()+`","reason":"cracked","refund_method":"STORE_CREDIT"}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}

func TestListReturnsHandlers(t *testing.T) {
	t.Parallel()

	newer := &models.ReturnView{
		ReturnRequest: models.ReturnRequest{
			ID:        uuid.New(),
			Reason:    "cracked",
			Status:    models.ReturnStateRequested,
			CreatedAt: time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC),
		},
		CounterpartName: "Grace Okafor",
	}
	older := &models.ReturnView{
		ReturnRequest: models.ReturnRequest{
			ID:        uuid.New(),
			Reason:    "wrong finish",
			Status:    models.ReturnStateApproved,
			CreatedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		},
		CounterpartName: "Grace Okafor",
	}

	for _, path := range []string{"/api/returns", "/api/seller/returns"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			f := newReturnHandlerFixture(t, &auth.Principal{UserID: uuid.New(), Role: models.RoleCustomer})
			f.store.views = []*models.ReturnView{newer, older}

			rec := f.do(http.MethodGet, path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}

			var got struct {
				Returns []*models.ReturnView `json:"returns"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if len(got.Returns) != 2 {
				t.Fatalf("len(returns) = %d, want 2", len(got.Returns))
			}
			// Newest first, as the store yields them.
			if got.Returns[0].ID != newer.ID || got.Returns[1].ID != older.ID {
				t.Errorf("returns out of order: got %s, %s", got.Returns[0].ID, got.Returns[1].ID)
			}
			if got.Returns[0].CounterpartName != "Grace Okafor" {
				t.Errorf("counterpart_name = %q, want %q", got.Returns[0].CounterpartName, "Grace Okafor")
			}
		})
	}
}

func TestAdminApproveReturnHandler(t *testing.T) {
	t.Parallel()

	t.Run("before seller approval is a 409", func(t *testing.T) {
		t.Parallel()
		f := newReturnHandlerFixture(t, &auth.Principal{UserID: uuid.New(), Role: models.RoleAdmin})

		returnID := uuid.New()
		f.store.returns[returnID] = &models.ReturnRequest{
			ID:                   returnID,
			OrderItemID:          f.item.ID,
			UserID:               f.customerID,
			SellerID:             f.sellerID,
			Status:               models.ReturnStateRequested,
			SellerApprovalStatus: models.ApprovalPending,
			RefundMethod:         models.RefundMethodStoreCredit,
		}

		rec := f.do(http.MethodPost, "/api/admin/returns/"+returnID.String()+"/approve", "")
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("after seller approval completes the refund", func(t *testing.T) {
		t.Parallel()
		f := newReturnHandlerFixture(t, &auth.Principal{UserID: uuid.New(), Role: models.RoleAdmin})

		returnID := uuid.New()
		f.store.returns[returnID] = &models.ReturnRequest{
			ID:                   returnID,
			OrderItemID:          f.item.ID,
			UserID:               f.customerID,
			SellerID:             f.sellerID,
			Status:               models.ReturnStateRequested,
			SellerApprovalStatus: models.ApprovalApproved,
			RefundMethod:         models.RefundMethodStoreCredit,
		}

		rec := f.do(http.MethodPost, "/api/admin/returns/"+returnID.String()+"/approve", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var got models.ReturnRequest
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.RefundStatus != models.RefundCompleted {
			t.Errorf("refund status = %s, want %s", got.RefundStatus, models.RefundCompleted)
		}
	})
}
