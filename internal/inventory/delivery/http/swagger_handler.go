package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for Inventory Service
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// GetInventory godoc
// @Summary List all items
// @Description List every item with its quantity, in storage order
// @Tags Inventory
// @Produce json
// @Success 200 {array} ItemResponse
// @Failure 500 {object} ErrorResponse
// @Router /get-inventory [get]
func (h *InventoryHandler) GetInventoryDoc() {}

// AddItem godoc
// @Summary Add an item
// @Description Create a new item. quantity defaults to 1 and must be a non-negative integer
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body object{name=string,quantity=int} true "Item data"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /add-item [post]
func (h *InventoryHandler) AddItemDoc() {}

// RemoveItem godoc
// @Summary Remove an item
// @Description Delete an item by name
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body object{name=string} true "Item name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /remove-item [post]
func (h *InventoryHandler) RemoveItemDoc() {}

// UpdateQuantity godoc
// @Summary Set item quantity
// @Description Overwrite the quantity of an existing item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body object{name=string,new_quantity=int} true "Quantity data"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /update-quantity [post]
func (h *InventoryHandler) UpdateQuantityDoc() {}

// BuyItem godoc
// @Summary Buy one unit
// @Description Decrement the quantity of an item by one. Fails when the item is out of stock
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body object{name=string} true "Item name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /buy-item [post]
func (h *InventoryHandler) BuyItemDoc() {}

// ReturnItem godoc
// @Summary Return one unit
// @Description Increment the quantity of an item by one
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body object{name=string} true "Item name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /return-item [post]
func (h *InventoryHandler) ReturnItemDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 503 {object} ErrorResponse
// @Router /health [get]
func (h *InventoryHandler) HealthCheckDoc() {}
