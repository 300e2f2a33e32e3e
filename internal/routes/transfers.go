package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_ledger/internal/transfers"
)

// RegisterTransferRoutes wires transfer endpoints.
func RegisterTransferRoutes(r fiber.Router, h *transfers.Handler) {
	r.Post("/transfers", h.Create)
}
