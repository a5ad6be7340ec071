package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/stock-keeper/internal/inventory/domain"
	"github.com/tair/stock-keeper/internal/inventory/usecase/command"
	"github.com/tair/stock-keeper/internal/inventory/usecase/query"
	"github.com/tair/stock-keeper/pkg/logger"
)

// InventoryHandler handles HTTP requests for inventory using CQRS pattern
type InventoryHandler struct {
	// Command handlers
	createHandler      *command.CreateItemHandler
	deleteHandler      *command.DeleteItemHandler
	setQuantityHandler *command.SetQuantityHandler
	buyHandler         *command.BuyItemHandler
	returnHandler      *command.ReturnItemHandler

	// Query handlers
	listHandler *query.ListItemsHandler

	metrics *Metrics
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(
	createHandler *command.CreateItemHandler,
	deleteHandler *command.DeleteItemHandler,
	setQuantityHandler *command.SetQuantityHandler,
	buyHandler *command.BuyItemHandler,
	returnHandler *command.ReturnItemHandler,
	listHandler *query.ListItemsHandler,
	metrics *Metrics,
) *InventoryHandler {
	return &InventoryHandler{
		createHandler:      createHandler,
		deleteHandler:      deleteHandler,
		setQuantityHandler: setQuantityHandler,
		buyHandler:         buyHandler,
		returnHandler:      returnHandler,
		listHandler:        listHandler,
		metrics:            metrics,
	}
}

// MessageResponse is the body of every successful mutation
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ItemResponse is one entry of the inventory listing
type ItemResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Home).Methods("GET")
	router.HandleFunc("/get-inventory", h.metrics.instrument("/get-inventory", h.GetInventory)).Methods("GET")
	router.HandleFunc("/add-item", h.metrics.instrument("/add-item", h.AddItem)).Methods("POST")
	router.HandleFunc("/remove-item", h.metrics.instrument("/remove-item", h.RemoveItem)).Methods("POST")
	router.HandleFunc("/update-quantity", h.metrics.instrument("/update-quantity", h.UpdateQuantity)).Methods("POST")
	router.HandleFunc("/buy-item", h.metrics.instrument("/buy-item", h.BuyItem)).Methods("POST")
	router.HandleFunc("/return-item", h.metrics.instrument("/return-item", h.ReturnItem)).Methods("POST")
}

// Home handles GET /
func (h *InventoryHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Inventory service is running")
}

// GetInventory handles GET /get-inventory
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.listHandler.Handle(r.Context(), query.ListItemsQuery{})
	if err != nil {
		h.respondError(w, r, "list", err)
		return
	}

	body := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		body = append(body, ItemResponse{Name: item.Name, Quantity: item.Quantity})
	}
	h.metrics.items.Set(float64(len(items)))
	h.metrics.observeOperation("list", "ok")

	respondJSON(w, http.StatusOK, body)
}

// AddItem handles POST /add-item
func (h *InventoryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.respondError(w, r, "create", domain.NewValidationError(command.MsgCreateInputRequired))
		return
	}
	name, ok := fields.str("name")
	if !ok {
		h.respondError(w, r, "create", domain.NewValidationError(command.MsgCreateInputRequired))
		return
	}
	quantity, err := fields.integer("quantity")
	if err != nil {
		h.respondError(w, r, "create", domain.NewValidationError(command.MsgCreateInputRequired))
		return
	}
	if _, sent := fields["quantity"]; sent && quantity == nil {
		// An explicit null is not an integer; only an absent field gets the default.
		h.respondError(w, r, "create", domain.NewValidationError(command.MsgCreateInputRequired))
		return
	}

	item, err := h.createHandler.Handle(r.Context(), command.CreateItemCommand{Name: name, Quantity: quantity})
	if err != nil {
		h.respondError(w, r, "create", err)
		return
	}
	h.metrics.items.Inc()

	h.respondOK(w, r, "create", fmt.Sprintf("Item '%s' added with quantity %d.", item.Name, item.Quantity))
}

// RemoveItem handles POST /remove-item
func (h *InventoryHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameField(r)
	if !ok {
		h.respondError(w, r, "delete", domain.NewValidationError(command.MsgDeleteInputRequired))
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteItemCommand{Name: name}); err != nil {
		h.respondError(w, r, "delete", err)
		return
	}
	h.metrics.items.Dec()

	h.respondOK(w, r, "delete", fmt.Sprintf("Item '%s' removed.", name))
}

// UpdateQuantity handles POST /update-quantity
func (h *InventoryHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.respondError(w, r, "set_quantity", domain.NewValidationError(command.MsgSetQuantityInputRequired))
		return
	}
	name, ok := fields.str("name")
	if !ok {
		h.respondError(w, r, "set_quantity", domain.NewValidationError(command.MsgSetQuantityInputRequired))
		return
	}
	quantity, err := fields.integer("new_quantity")
	if err != nil {
		h.respondError(w, r, "set_quantity", domain.NewValidationError(command.MsgSetQuantityInputRequired))
		return
	}

	cmd := command.SetQuantityCommand{Name: name, NewQuantity: quantity}
	if err := h.setQuantityHandler.Handle(r.Context(), cmd); err != nil {
		h.respondError(w, r, "set_quantity", err)
		return
	}

	h.respondOK(w, r, "set_quantity", fmt.Sprintf("Item '%s' quantity updated to %d.", name, *quantity))
}

// BuyItem handles POST /buy-item
func (h *InventoryHandler) BuyItem(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameField(r)
	if !ok {
		h.respondError(w, r, "buy", domain.NewValidationError(command.MsgItemNameRequired))
		return
	}

	if err := h.buyHandler.Handle(r.Context(), command.BuyItemCommand{Name: name}); err != nil {
		h.respondError(w, r, "buy", err)
		return
	}

	h.respondOK(w, r, "buy", fmt.Sprintf("Item '%s' purchased successfully!", name))
}

// ReturnItem handles POST /return-item
func (h *InventoryHandler) ReturnItem(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameField(r)
	if !ok {
		h.respondError(w, r, "return", domain.NewValidationError(command.MsgItemNameRequired))
		return
	}

	if err := h.returnHandler.Handle(r.Context(), command.ReturnItemCommand{Name: name}); err != nil {
		h.respondError(w, r, "return", err)
		return
	}

	h.respondOK(w, r, "return", fmt.Sprintf("Item '%s' returned successfully!", name))
}

// nameField decodes a body whose only input is the item name
func (h *InventoryHandler) nameField(r *http.Request) (string, bool) {
	fields, err := decodeFields(r)
	if err != nil {
		return "", false
	}
	return fields.str("name")
}

// respondOK records a successful operation and sends its message
func (h *InventoryHandler) respondOK(w http.ResponseWriter, r *http.Request, operation, message string) {
	h.metrics.observeOperation(operation, "ok")
	logger.Info(r.Context()).
		Str("operation", operation).
		Msg(message)
	respondJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// respondError maps a tagged error to its status. Storage failures are
// logged at error level, business rejections at warn.
func (h *InventoryHandler) respondError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	derr := domain.AsError(err)
	status := statusFor(derr.Kind)
	h.metrics.observeOperation(operation, derr.Kind.String())

	event := logger.Warn(r.Context())
	if derr.Kind == domain.KindStorage {
		event = logger.Error(r.Context()).Err(derr.Err)
	}
	event.
		Str("operation", operation).
		Str("kind", derr.Kind.String()).
		Int("status", status).
		Msg(derr.Message)

	respondJSON(w, status, ErrorResponse{Error: derr.Message})
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict, domain.KindDomainRule:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RegisterHealthCheck registers health check endpoint
func (h *InventoryHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Error(r.Context()).Err(err).Msg("Health check failed")
			respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{
				Error: "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, MessageResponse{
			Message: "Inventory service is healthy",
		})
	}).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
