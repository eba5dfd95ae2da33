package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"medstock/internal/http/response"
	"medstock/internal/model"
	"medstock/internal/service"
)

// ListMedicines returns the catalog with current stock, optionally filtered by q.
//
// @Summary List medicines
// @Tags medicines
// @Security BearerAuth
// @Produce json
// @Param q query string false "case-insensitive match on name, unit or dosage form"
// @Success 200 {object} response.Envelope{data=[]model.Medicine}
// @Router /api/medicines [get]
func ListMedicines(svc service.MedicineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), c.Query("q"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusOK, items)
	}
}

// GetMedicine returns one medicine.
//
// @Summary Get medicine
// @Tags medicines
// @Security BearerAuth
// @Produce json
// @Param id path string true "medicine id"
// @Success 200 {object} response.Envelope{data=model.Medicine}
// @Failure 404 {object} response.Envelope
// @Router /api/medicines/{id} [get]
func GetMedicine(svc service.MedicineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := medicineID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		m, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusOK, m)
	}
}

// CreateMedicine adds a catalog entry.
//
// @Summary Create medicine
// @Tags medicines
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.MedicineInput true "medicine"
// @Success 201 {object} response.Envelope{data=model.Medicine}
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /api/medicines [post]
func CreateMedicine(svc service.MedicineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.MedicineInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		m, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusCreated, m)
	}
}

// UpdateMedicine applies a partial update; omitted fields are left unchanged.
//
// @Summary Update medicine
// @Tags medicines
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "medicine id"
// @Param body body model.MedicinePatch true "fields to change"
// @Success 200 {object} response.Envelope{data=model.Medicine}
// @Router /api/medicines/{id} [put]
func UpdateMedicine(svc service.MedicineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := medicineID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var patch model.MedicinePatch
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		m, err := svc.Update(c.UserContext(), id, patch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusOK, m)
	}
}

// DeleteMedicine removes a medicine that has no ledger entries.
//
// @Summary Delete medicine
// @Tags medicines
// @Security BearerAuth
// @Produce json
// @Param id path string true "medicine id"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/medicines/{id} [delete]
func DeleteMedicine(svc service.MedicineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := medicineID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return response.Message(c, fiber.StatusOK, "medicine deleted")
	}
}

func medicineID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
