package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abdallahh166/luli-beads/internal/catalog"
	"github.com/abdallahh166/luli-beads/internal/domain"
	"github.com/abdallahh166/luli-beads/internal/store"
)

// Cart is the coordinator surface the handlers consume.
type Cart interface {
	AddToCart(ctx context.Context, p domain.ProductSnapshot, qty int, color, handle, label string) domain.LineItem
	RemoveFromCart(ctx context.Context, itemID string)
	UpdateItemQuantity(ctx context.Context, itemID string, qty int)
	ClearCart(ctx context.Context)
	CartState() store.CartState
	Status() domain.SyncStatus
	OnCart(fn func(store.CartState)) func()
	OnStatus(fn func(domain.SyncStatus)) func()
}

// Catalog resolves products so the cart can capture a price snapshot at add
// time.
type Catalog interface {
	GetAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

type CartHandler struct {
	cart    Cart
	catalog Catalog
}

func NewCartHandler(cart Cart, catalog Catalog) *CartHandler {
	return &CartHandler{cart: cart, catalog: catalog}
}

type AddItemRequestDTO struct {
	ProductID   int64  `json:"product_id"`
	Quantity    int    `json:"quantity"`
	Color       string `json:"color,omitempty"`
	Handle      string `json:"handle,omitempty"`
	CustomLabel string `json:"custom_label,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items   []domain.LineItem `json:"items"`
	Summary domain.Summary    `json:"summary"`
	Sync    domain.SyncStatus `json:"sync"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshot())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.catalog.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "no such product")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}
	if !product.InStock {
		respondError(w, http.StatusConflict, "out_of_stock", "product is out of stock")
		return
	}

	h.cart.AddToCart(r.Context(), product.Snapshot(), req.Quantity, req.Color, req.Handle, req.CustomLabel)
	respondJSON(w, http.StatusCreated, h.snapshot())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "missing item id")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// zero (or negative) removes the item, mirroring the store semantics
	h.cart.UpdateItemQuantity(r.Context(), itemID, req.Quantity)
	respondJSON(w, http.StatusOK, h.snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "missing item id")
		return
	}

	h.cart.RemoveFromCart(r.Context(), itemID)
	respondJSON(w, http.StatusOK, h.snapshot())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart(r.Context())
	respondJSON(w, http.StatusOK, h.snapshot())
}

func (h *CartHandler) snapshot() cartResponse {
	state := h.cart.CartState()
	return cartResponse{
		Items:   state.Items,
		Summary: state.Summary,
		Sync:    h.cart.Status(),
	}
}
