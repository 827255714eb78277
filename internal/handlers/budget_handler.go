package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/danabekov/fintrack/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BudgetHandler struct {
	Service *services.BudgetService
}

func NewBudgetHandler(service *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{Service: service}
}

// POST /budgets
func (h *BudgetHandler) CreateBudgetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		CategoryID string  `json:"category_id"`
		Currency   string  `json:"currency"`
		Limit      float64 `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Currency:   req.Currency,
		Limit:      req.Limit,
	}
	created, err := h.Service.CreateBudget(r.Context(), budget)
	if err != nil {
		log.WithError(err).Warn("Failed to create budget")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GET /budgets
func (h *BudgetHandler) GetBudgetsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	budgets, err := h.Service.GetBudgets(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch budgets")
		http.Error(w, "Failed to get budgets", http.StatusInternalServerError)
		return
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(budgets)
}

// PUT /budgets/{id}
func (h *BudgetHandler) UpdateBudgetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid budget ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Limit float64 `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateBudget(r.Context(), userID, id, req.Limit); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeMessage(w, "Budget updated")
}

// DELETE /budgets/{id}
func (h *BudgetHandler) DeleteBudgetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid budget ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteBudget(r.Context(), userID, id); err != nil {
		http.Error(w, "Failed to delete budget", http.StatusInternalServerError)
		return
	}

	writeMessage(w, "Budget deleted")
}
