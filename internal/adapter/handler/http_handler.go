package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/homestack/pantry/internal/core/domain"
	"github.com/homestack/pantry/internal/core/service"
)

// HTTPHandler is the command facade: it validates request shape, calls the
// inventory service, persists on success and maps failures to status codes.
// A store-level false never persists; a reconciler failure never rolls back
// the inventory change it follows.
type HTTPHandler struct {
	inventory *service.InventoryService
	todoSync  *service.TodoSyncer
}

func NewHTTPHandler(inventory *service.InventoryService, todoSync *service.TodoSyncer) *HTTPHandler {
	return &HTTPHandler{inventory: inventory, todoSync: todoSync}
}

// Register attaches every route to the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/items/add", h.AddItem)
	mux.HandleFunc("/api/items/remove", h.RemoveItem)
	mux.HandleFunc("/api/items/update", h.UpdateItem)
	mux.HandleFunc("/api/items/increment", h.IncrementItem)
	mux.HandleFunc("/api/items/decrement", h.DecrementItem)
	mux.HandleFunc("/api/items/settings", h.UpdateSettings)
	mux.HandleFunc("/api/config/expiry-threshold", h.SetExpiryThreshold)
	mux.HandleFunc("/api/items", h.GetItems)
	mux.HandleFunc("/api/inventories", h.GetAllInventories)
	mux.HandleFunc("/api/expiring", h.GetExpiring)
	mux.HandleFunc("/api/stats", h.GetStats)
}

type CommandResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ItemView struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	Unit           string `json:"unit"`
	Category       string `json:"category"`
	ExpiryDate     string `json:"expiry_date"`
	AutoAddEnabled bool   `json:"auto_add_enabled"`
	Threshold      int    `json:"auto_add_to_list_quantity"`
	TodoList       string `json:"todo_list"`
}

type InventoryView struct {
	InventoryID string     `json:"inventory_id"`
	Items       []ItemView `json:"items"`
}

type AddItemRequest struct {
	InventoryID    string  `json:"inventory_id"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	Unit           *string `json:"unit"`
	Category       *string `json:"category"`
	ExpiryDate     *string `json:"expiry_date"`
	AutoAddEnabled *bool   `json:"auto_add_enabled"`
	Threshold      *int    `json:"auto_add_to_list_quantity"`
	TodoList       *string `json:"todo_list"`
}

type RemoveItemRequest struct {
	InventoryID string `json:"inventory_id"`
	Name        string `json:"name"`
}

type UpdateItemRequest struct {
	InventoryID    string  `json:"inventory_id"`
	OldName        string  `json:"old_name"`
	Name           string  `json:"name"`
	Quantity       *int    `json:"quantity"`
	Unit           *string `json:"unit"`
	Category       *string `json:"category"`
	ExpiryDate     *string `json:"expiry_date"`
	AutoAddEnabled *bool   `json:"auto_add_enabled"`
	Threshold      *int    `json:"auto_add_to_list_quantity"`
	TodoList       *string `json:"todo_list"`
}

type AdjustQuantityRequest struct {
	InventoryID string `json:"inventory_id"`
	Name        string `json:"name"`
	Amount      *int   `json:"amount"`
}

type UpdateSettingsRequest struct {
	InventoryID    string  `json:"inventory_id"`
	Name           string  `json:"name"`
	Quantity       *int    `json:"quantity"`
	Unit           *string `json:"unit"`
	Category       *string `json:"category"`
	ExpiryDate     *string `json:"expiry_date"`
	AutoAddEnabled *bool   `json:"auto_add_enabled"`
	Threshold      *int    `json:"auto_add_to_list_quantity"`
	TodoList       *string `json:"todo_list"`
}

type SetExpiryThresholdRequest struct {
	ThresholdDays int `json:"threshold_days"`
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeCommand(w, r, &req) {
		return
	}
	if req.InventoryID == "" {
		writeBadRequest(w, "missing inventory_id")
		return
	}

	patch := domain.ItemPatch{
		Unit:           req.Unit,
		Category:       req.Category,
		ExpiryDate:     req.ExpiryDate,
		AutoAddEnabled: req.AutoAddEnabled,
		Threshold:      req.Threshold,
		TodoList:       req.TodoList,
	}
	if err := h.inventory.AddItem(req.InventoryID, req.Name, req.Quantity, patch); err != nil {
		if errors.Is(err, service.ErrEmptyName) {
			writeBadRequest(w, "item name cannot be empty")
			return
		}
		log.Printf("failed to add item %q to inventory %q: %v", req.Name, req.InventoryID, err)
		writeInternalError(w)
		return
	}
	h.saveAndRespond(w, r, req.InventoryID, "item added")
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req RemoveItemRequest
	if !decodeCommand(w, r, &req) {
		return
	}
	if !h.inventory.RemoveItem(req.InventoryID, req.Name) {
		writeNotFound(w, "item not found")
		return
	}
	h.saveAndRespond(w, r, req.InventoryID, "item removed")
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if !decodeCommand(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "missing name")
		return
	}

	patch := domain.ItemPatch{
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		Category:       req.Category,
		ExpiryDate:     req.ExpiryDate,
		AutoAddEnabled: req.AutoAddEnabled,
		Threshold:      req.Threshold,
		TodoList:       req.TodoList,
	}
	if !h.inventory.UpdateItem(req.InventoryID, req.OldName, req.Name, patch) {
		writeNotFound(w, "item not found")
		return
	}
	h.saveAndRespond(w, r, req.InventoryID, "item updated")
}

func (h *HTTPHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	var req AdjustQuantityRequest
	if !decodeCommand(w, r, &req) {
		return
	}
	amount := 1
	if req.Amount != nil {
		amount = *req.Amount
	}
	if !h.inventory.IncrementItem(req.InventoryID, req.Name, amount) {
		writeNotFound(w, "item not found")
		return
	}

	// Restocking may satisfy an outstanding to-do entry; reconcile with the
	// post-increment record before persisting.
	if item, ok := h.inventory.GetItem(req.InventoryID, req.Name); ok {
		h.todoSync.CheckAndRemoveItem(r.Context(), req.Name, item)
	}
	h.saveAndRespond(w, r, req.InventoryID, "item incremented")
}

func (h *HTTPHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	var req AdjustQuantityRequest
	if !decodeCommand(w, r, &req) {
		return
	}
	amount := 1
	if req.Amount != nil {
		amount = *req.Amount
	}
	if !h.inventory.DecrementItem(req.InventoryID, req.Name, amount) {
		writeNotFound(w, "item not found")
		return
	}

	if item, ok := h.inventory.GetItem(req.InventoryID, req.Name); ok {
		h.todoSync.CheckAndAddItem(r.Context(), req.Name, item)
	}
	h.saveAndRespond(w, r, req.InventoryID, "item decremented")
}

func (h *HTTPHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if !decodeCommand(w, r, &req) {
		return
	}
	patch := domain.ItemPatch{
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		Category:       req.Category,
		ExpiryDate:     req.ExpiryDate,
		AutoAddEnabled: req.AutoAddEnabled,
		Threshold:      req.Threshold,
		TodoList:       req.TodoList,
	}
	if !h.inventory.UpdateItemSettings(req.InventoryID, req.Name, patch) {
		writeNotFound(w, "item not found")
		return
	}
	h.saveAndRespond(w, r, req.InventoryID, "settings updated")
}

func (h *HTTPHandler) SetExpiryThreshold(w http.ResponseWriter, r *http.Request) {
	var req SetExpiryThresholdRequest
	if !decodeCommand(w, r, &req) {
		return
	}
	if req.ThresholdDays < 1 || req.ThresholdDays > 30 {
		writeBadRequest(w, "threshold_days must be between 1 and 30")
		return
	}
	h.inventory.SetExpiryThreshold(r.Context(), req.ThresholdDays)
	h.saveAndRespond(w, r, "", "expiry threshold updated")
}

func (h *HTTPHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	inventoryID := r.URL.Query().Get("inventory_id")
	if inventoryID == "" {
		writeBadRequest(w, "missing inventory_id")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]ItemView{
		"items": h.itemViews(inventoryID),
	})
}

func (h *HTTPHandler) GetAllInventories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	inventories := []InventoryView{}
	for _, id := range h.inventory.InventoryIDs() {
		inventories = append(inventories, InventoryView{
			InventoryID: id,
			Items:       h.itemViews(id),
		})
	}
	writeJSON(w, http.StatusOK, map[string][]InventoryView{
		"inventories": inventories,
	})
}

func (h *HTTPHandler) GetExpiring(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	inventoryID := r.URL.Query().Get("inventory_id")
	writeJSON(w, http.StatusOK, map[string][]domain.ExpiringItem{
		"expiring_items": h.inventory.ExpiringSoon(inventoryID),
	})
}

func (h *HTTPHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	inventoryID := r.URL.Query().Get("inventory_id")
	if inventoryID == "" {
		writeBadRequest(w, "missing inventory_id")
		return
	}
	writeJSON(w, http.StatusOK, h.inventory.Statistics(inventoryID))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) itemViews(inventoryID string) []ItemView {
	items := h.inventory.GetAllItems(inventoryID)
	views := make([]ItemView, 0, len(items))
	for name, it := range items {
		views = append(views, ItemView{
			Name:           name,
			Quantity:       it.Quantity,
			Unit:           it.Unit,
			Category:       it.Category,
			ExpiryDate:     it.ExpiryDate,
			AutoAddEnabled: it.AutoAddEnabled,
			Threshold:      it.Threshold,
			TodoList:       it.TodoList,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		return strings.ToLower(views[i].Name) < strings.ToLower(views[j].Name)
	})
	return views
}

func (h *HTTPHandler) saveAndRespond(w http.ResponseWriter, r *http.Request, inventoryID, message string) {
	if err := h.inventory.Save(r.Context(), inventoryID); err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, CommandResponse{Success: true, Message: message})
}

func decodeCommand(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, CommandResponse{Success: false, Message: message})
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, CommandResponse{Success: false, Message: message})
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, CommandResponse{Success: false, Message: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
