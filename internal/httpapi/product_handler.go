package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abdallahh166/luli-beads/internal/catalog"
	"github.com/abdallahh166/luli-beads/internal/domain"
)

type ProductHandler struct {
	catalog Catalog
}

func NewProductHandler(catalog Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "productID")

	// numeric ids hit the primary lookup, anything else is tried as a slug
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		product, err := h.catalog.GetByID(r.Context(), id)
		h.respondProduct(w, product, err)
		return
	}

	product, err := h.catalog.GetBySlug(r.Context(), raw)
	h.respondProduct(w, product, err)
}

func (h *ProductHandler) respondProduct(w http.ResponseWriter, product *domain.Product, err error) {
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "no such product")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, product)
}
