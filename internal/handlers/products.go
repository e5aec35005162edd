package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bidmanager/db"
)

func validateProductRequest(p *db.Product) error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.SKU == "" {
		return errors.New("sku is required")
	}
	return nil
}

func (h *Handler) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	products, err := h.Store.GetProducts(r.Context(), params.Limit, params.Skip)
	if err != nil {
		http.Error(w, "Failed to get products", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "productId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := h.Store.GetProduct(r.Context(), productID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var product db.Product
	if err := json.Unmarshal(body, &product); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateProductRequest(&product); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Проверка дубликата SKU до вставки, чтобы вернуть осмысленный ответ
	existing, err := h.Store.GetProductBySKU(r.Context(), product.SKU)
	if err != nil {
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "Product with this SKU already exists", http.StatusBadRequest)
		return
	}

	if err := h.Store.CreateProduct(r.Context(), &product); err != nil {
		respondStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "productId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var patch db.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	product, err := h.Store.UpdateProduct(r.Context(), productID, &patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProductHandler удаляет продукт; ссылающиеся на него заказы остаются
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "productId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteProduct(r.Context(), productID); err != nil {
		respondStoreError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Product deleted successfully")
}
