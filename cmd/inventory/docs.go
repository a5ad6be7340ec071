package main

// @title Inventory Service API
// @version 1.0
// @description Stock-keeping service: named items with non-negative quantities, mutated one request at a time per item.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/stock-keeper
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/stock-keeper/blob/main/LICENSE

// @host localhost:5000
// @BasePath /

// @tag.name Inventory
// @tag.description Inventory management endpoints

// @tag.name Health
// @tag.description Health check endpoints

// @tag.name Swagger
// @tag.description Swagger documentation endpoints
