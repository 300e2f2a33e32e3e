package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_ledger/internal/ledger"
	"github.com/atlas-pay/atlas_ledger/internal/transfers"
)

// RegisterAccountRoutes wires account-related endpoints.
func RegisterAccountRoutes(r fiber.Router, h *ledger.Handler, th *transfers.Handler) {
	r.Post("/accounts", h.Create)
	r.Get("/accounts/:accountId", h.Get)
	r.Post("/accounts/:accountId/deposit", h.Deposit)
	r.Post("/accounts/:accountId/withdraw", h.Withdraw)
	r.Get("/accounts/:accountId/transfers", th.History)
}
