package ledger

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	ledger *Ledger
}

// NewHandler builds an account HTTP handler.
func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger}
}

type createRequest struct {
	AccountID      string          `json:"account_id"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type accountResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// Create opens a new account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.AccountID == "" {
		return fiber.NewError(http.StatusBadRequest, "account_id is required")
	}

	account, err := h.ledger.CreateAccount(req.AccountID, req.InitialBalance)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateAccount):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(accountResponse{
		AccountID: account.ID(),
		Balance:   account.Balance(),
	})
}

// Get returns the account and its current balance.
func (h *Handler) Get(c *fiber.Ctx) error {
	account, err := h.ledger.Get(c.Params("accountId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.Status(http.StatusOK).JSON(accountResponse{
		AccountID: account.ID(),
		Balance:   account.Balance(),
	})
}

// Deposit credits a single account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.adjust(c, false)
}

// Withdraw debits a single account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.adjust(c, true)
}

func (h *Handler) adjust(c *fiber.Ctx, debit bool) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if !req.Amount.IsPositive() {
		return fiber.NewError(http.StatusBadRequest, ErrInvalidAmount.Error())
	}

	delta := req.Amount
	if debit {
		delta = delta.Neg()
	}

	balance, err := h.ledger.Adjust(c.Params("accountId"), delta)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(accountResponse{
		AccountID: c.Params("accountId"),
		Balance:   balance,
	})
}
