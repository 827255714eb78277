package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/danabekov/fintrack/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionHandler handles HTTP requests related to transactions.
type TransactionHandler struct {
	Service *services.TransactionService
}

func NewTransactionHandler(service *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{Service: service}
}

type transactionRequest struct {
	CategoryID         string  `json:"category_id"`
	Currency           string  `json:"currency"`
	Type               string  `json:"type"`
	Amount             float64 `json:"amount"`
	Description        string  `json:"description"`
	Date               string  `json:"date"`
	IsRecurring        bool    `json:"is_recurring"`
	RecurringFrequency string  `json:"recurring_frequency"`
}

// POST /transactions
func (h *TransactionHandler) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode transaction request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	txn := &models.Transaction{
		UserID:             userID,
		Currency:           req.Currency,
		Type:               models.TransactionType(req.Type),
		Amount:             req.Amount,
		Description:        req.Description,
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: models.Frequency(req.RecurringFrequency),
	}
	if req.CategoryID != "" {
		categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			http.Error(w, "Invalid category ID", http.StatusBadRequest)
			return
		}
		txn.CategoryID = &categoryID
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		txn.Date = date
	}

	created, err := h.Service.CreateTransaction(r.Context(), txn)
	if err != nil {
		log.WithError(err).Warn("Failed to create transaction")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GET /transactions?type=&category_id=&from=&to=
func (h *TransactionHandler) GetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter := models.TransactionFilter{}
	query := r.URL.Query()
	if t := query.Get("type"); t != "" {
		parsed, ok := models.ParseTransactionType(t)
		if !ok {
			http.Error(w, "Invalid type filter", http.StatusBadRequest)
			return
		}
		filter.Type = parsed
	}
	if c := query.Get("category_id"); c != "" {
		categoryID, err := primitive.ObjectIDFromHex(c)
		if err != nil {
			http.Error(w, "Invalid category ID", http.StatusBadRequest)
			return
		}
		filter.CategoryID = &categoryID
	}
	if from := query.Get("from"); from != "" {
		date, err := time.Parse("2006-01-02", from)
		if err != nil {
			http.Error(w, "Invalid from date", http.StatusBadRequest)
			return
		}
		filter.From = date
	}
	if to := query.Get("to"); to != "" {
		date, err := time.Parse("2006-01-02", to)
		if err != nil {
			http.Error(w, "Invalid to date", http.StatusBadRequest)
			return
		}
		filter.To = date
	}

	transactions, err := h.Service.GetTransactions(r.Context(), userID, filter)
	if err != nil {
		log.WithError(err).Error("Failed to fetch transactions")
		http.Error(w, "Failed to get transactions", http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}

// GET /transactions/{id}
func (h *TransactionHandler) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	txn, err := h.Service.GetTransaction(r.Context(), userID, id)
	if err != nil {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(txn)
}

// PUT /transactions/{id}
func (h *TransactionHandler) UpdateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount      *float64 `json:"amount"`
		Description *string  `json:"description"`
		Date        *string  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	update := bson.M{}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}
		update["amount"] = *req.Amount
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		update["date"] = date
	}
	if len(update) == 0 {
		http.Error(w, "No updatable fields provided", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateTransaction(r.Context(), userID, id, update); err != nil {
		log.WithError(err).Warn("Failed to update transaction")
		http.Error(w, "Failed to update transaction", http.StatusInternalServerError)
		return
	}

	writeMessage(w, "Transaction updated")
}

// DELETE /transactions/{id}
func (h *TransactionHandler) DeleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteTransaction(r.Context(), userID, id); err != nil {
		http.Error(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	writeMessage(w, "Transaction deleted")
}

// POST /transactions/import  (multipart form, field "file")
func (h *TransactionHandler) ImportCSVHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing csv file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	imported, err := h.Service.ImportCSV(r.Context(), userID, file)
	if err != nil {
		log.WithError(err).Warn("CSV import failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"imported": imported})
}

// GET /dashboard/summary?year=2024&month=3
func (h *TransactionHandler) DashboardSummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	now := time.Now()
	year := now.Year()
	month := now.Month()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			http.Error(w, "Invalid year", http.StatusBadRequest)
			return
		}
		year = parsed
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			http.Error(w, "Invalid month", http.StatusBadRequest)
			return
		}
		month = time.Month(parsed)
	}

	summary, err := h.Service.GetMonthlySummary(r.Context(), userID, year, month)
	if err != nil {
		log.WithError(err).Error("Failed to build dashboard summary")
		http.Error(w, "Failed to build summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
