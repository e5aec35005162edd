package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"bidmanager/db"

	"github.com/go-chi/chi/v5"
)

type PaginationParams struct {
	Limit int
	Skip  int
}

// parsePaginationParams парсит skip и limit из query, с дефолтами
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 100, Skip: 0}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			params.Limit = l
		}
	}
	if skipStr := r.URL.Query().Get("skip"); skipStr != "" {
		if s, err := strconv.Atoi(skipStr); err == nil && s >= 0 {
			params.Skip = s
		}
	}
	return params
}

// parseIDParam достает числовой идентификатор из пути
func parseIDParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// respondStoreError переводит типизированные ошибки хранилища в HTTP-статусы
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case db.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case db.IsDuplicateKey(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// GetTendersSummaryHandler возвращает сводку тендеров с маржой
func (h *Handler) GetTendersSummaryHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	summaries, err := h.tendersSummary(r.Context(), params.Limit, params.Skip)
	if err != nil {
		http.Error(w, "Failed to get tenders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// GetTenderDetailsHandler возвращает тендер со всеми заказами и маржой
func (h *Handler) GetTenderDetailsHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := parseIDParam(r, "tenderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	details, err := h.tenderWithDetails(r.Context(), tenderID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var tender db.Tender
	if err := json.Unmarshal(body, &tender); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if tender.Client == "" {
		http.Error(w, "client is required", http.StatusBadRequest)
		return
	}

	if err := h.Store.CreateTender(r.Context(), &tender); err != nil {
		http.Error(w, "Failed to create tender", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, tender)
}

// UpdateTenderHandler применяет частичное обновление: отсутствующие в теле
// поля сохраняют прежние значения
func (h *Handler) UpdateTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := parseIDParam(r, "tenderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var patch db.TenderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	tender, err := h.Store.UpdateTender(r.Context(), tenderID, &patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tender)
}

// DeleteTenderHandler удаляет тендер вместе с его заказами
func (h *Handler) DeleteTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := parseIDParam(r, "tenderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteTender(r.Context(), tenderID); err != nil {
		respondStoreError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Tender deleted successfully")
}

// ValidateTenderHandler проверяет, что у тендера есть хотя бы один заказ
func (h *Handler) ValidateTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := parseIDParam(r, "tenderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validateTenderRegistration(r.Context(), tenderID); err != nil {
		if errors.Is(err, ErrNoOrders) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondStoreError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Tender is valid")
}
