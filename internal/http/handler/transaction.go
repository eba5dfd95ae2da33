package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"medstock/internal/http/middleware"
	"medstock/internal/http/response"
	"medstock/internal/model"
	"medstock/internal/service"
)

// ListTransactions returns ledger entries newest first.
//
// @Summary List stock transactions
// @Tags transactions
// @Security BearerAuth
// @Produce json
// @Param medicine_id query string false "filter by medicine"
// @Param limit query int false "page size" default(50)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.TransactionListResult
// @Router /api/stock-transactions [get]
func ListTransactions(svc service.TransactionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		f := model.TransactionFilter{MedicineID: c.Query("medicine_id"), Limit: limit, Offset: offset}
		if f.MedicineID != "" {
			if _, err := uuid.Parse(f.MedicineID); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid medicine_id format")
			}
		}

		res, err := svc.List(c.UserContext(), f)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": true,
			"data":   res.Items,
			"total":  res.Total,
			"limit":  res.Limit,
			"offset": res.Offset,
		})
	}
}

// CreateTransaction records a stock-in or dispense. The entry is attributed
// to the authenticated user.
//
// @Summary Record stock transaction
// @Tags transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.TransactionInput true "transaction"
// @Success 201 {object} response.Envelope{data=model.StockTransaction}
// @Failure 409 {object} response.Envelope "PERIOD_CLOSED"
// @Failure 422 {object} response.Envelope "VALIDATION_ERROR or INSUFFICIENT_STOCK"
// @Router /api/stock-transactions [post]
func CreateTransaction(svc service.TransactionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.TransactionInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		var by string
		if u := middleware.CurrentUser(c); u != nil {
			by = u.Username
		}
		txn, err := svc.Create(c.UserContext(), in, by)
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusCreated, txn)
	}
}

// ListTransactionTypes returns the transaction type enumeration.
//
// @Summary Transaction types
// @Tags transactions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope{data=[]model.TransactionType}
// @Router /api/transaction-types [get]
func ListTransactionTypes(svc service.TransactionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		types, err := svc.Types(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusOK, types)
	}
}
