package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metropass/metropass-backend/internal/handlers"
	"github.com/metropass/metropass-backend/internal/services"
	"github.com/metropass/metropass-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, tickets *services.TicketService) {
	stationHandler := handlers.NewStationHandler(store)
	lineHandler := handlers.NewLineHandler(store)
	connectionHandler := handlers.NewConnectionHandler(store)
	passengerHandler := handlers.NewPassengerHandler(store)
	ticketHandler := handlers.NewTicketHandler(tickets)
	scannerHandler := handlers.NewScannerHandler(tickets)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Operator topology management
	stations := api.Group("/stations")
	stations.Post("/", stationHandler.CreateStation)
	stations.Get("/", stationHandler.ListStations)
	stations.Get("/:id", stationHandler.GetStation)
	stations.Delete("/:id", stationHandler.DeleteStation)

	lines := api.Group("/lines")
	lines.Post("/", lineHandler.CreateLine)
	lines.Get("/", lineHandler.ListLines)
	lines.Get("/:id", lineHandler.GetLine)
	lines.Patch("/:id/active", lineHandler.SetActive)
	lines.Delete("/:id", lineHandler.DeleteLine)

	connections := api.Group("/connections")
	connections.Post("/", connectionHandler.CreateConnection)
	connections.Get("/", connectionHandler.ListConnections)
	connections.Get("/:id", connectionHandler.GetConnection)
	connections.Delete("/:id", connectionHandler.DeleteConnection)

	// Passenger accounts and balance ledger
	passengers := api.Group("/passengers")
	passengers.Post("/", passengerHandler.CreatePassenger)
	passengers.Get("/:id", passengerHandler.GetPassenger)
	passengers.Post("/:id/balance", passengerHandler.AddBalance)
	passengers.Get("/:id/tickets", passengerHandler.GetTickets)

	// Pricing and the online purchase flow
	api.Post("/routes/price", ticketHandler.PriceRoute)

	ticketGroup := api.Group("/tickets")
	ticketGroup.Post("/", ticketHandler.CreateTicket)
	ticketGroup.Post("/:ticketID/otp", ticketHandler.ReissueCode)
	ticketGroup.Post("/:ticketID/confirm", ticketHandler.ConfirmTicket)

	// Platform scanners
	scanner := api.Group("/scanner")
	scanner.Post("/incoming", scannerHandler.ScanIncoming)
	scanner.Post("/outgoing", scannerHandler.ScanOutgoing)
	scanner.Post("/offline", scannerHandler.PurchaseOffline)
}
