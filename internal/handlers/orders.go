package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bidmanager/db"
)

func validateOrderRequest(o *db.Order) error {
	if o.TenderID <= 0 {
		return errors.New("tender_id must be positive")
	}
	if o.ProductID <= 0 {
		return errors.New("product_id must be positive")
	}
	if o.AwardedQuantity <= 0 {
		return errors.New("awarded_quantity must be positive")
	}
	return nil
}

func (h *Handler) GetOrdersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	orders, err := h.Store.GetOrders(r.Context(), params.Limit, params.Skip)
	if err != nil {
		http.Error(w, "Failed to get orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseIDParam(r, "orderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.Store.GetOrder(r.Context(), orderID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// CreateOrderHandler создает заказ; тендер и продукт должны существовать
func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var order db.Order
	if err := json.Unmarshal(body, &order); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateOrderRequest(&order); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := CreateOrderChecked(r.Context(), h.Store, &order); err != nil {
		// Отсутствующий родитель — ошибка запроса, а не адресации
		if db.IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) UpdateOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseIDParam(r, "orderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var patch db.OrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if patch.AwardedQuantity != nil && *patch.AwardedQuantity <= 0 {
		http.Error(w, "awarded_quantity must be positive", http.StatusBadRequest)
		return
	}

	order, err := h.Store.UpdateOrder(r.Context(), orderID, &patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) DeleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseIDParam(r, "orderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteOrder(r.Context(), orderID); err != nil {
		respondStoreError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Order deleted successfully")
}
