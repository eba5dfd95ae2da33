package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"medstock/internal/http/middleware"
	"medstock/internal/http/response"
	"medstock/internal/model"
	"medstock/internal/service"
	"medstock/internal/stock"
)

type monthCloseRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// DailyReport lists one day's transactions with in and out totals.
//
// @Summary Daily report
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} response.Envelope{data=service.DailyReport}
// @Router /api/reports/daily [get]
func DailyReport(svc service.TransactionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var day model.Date
		if s := c.Query("date"); s != "" {
			d, err := model.ParseDate(s)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
			}
			day = d
		}
		rep, err := svc.Daily(c.UserContext(), day)
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusOK, rep)
	}
}

// MonthlyReport reconciles opening, flows and closing per medicine.
//
// @Summary Monthly report
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param year query int true "year"
// @Param month query int true "month 1-12"
// @Success 200 {object} response.Envelope{data=[]model.MonthlyReport}
// @Failure 400 {object} response.Envelope
// @Router /api/reports/monthly [get]
func MonthlyReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := periodFromStrings(c.Query("year"), c.Query("month"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERIOD", "year and month must be integers")
		}
		rows, err := svc.Monthly(c.UserContext(), p)
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusOK, rows)
	}
}

// CloseMonth finalizes a month and carries positive closing stock forward.
//
// @Summary Close month
// @Tags reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body monthCloseRequest true "period"
// @Success 201 {object} response.Envelope{data=model.MonthCloseResult}
// @Failure 400 {object} response.Envelope "INVALID_PERIOD"
// @Failure 409 {object} response.Envelope "MONTH_ALREADY_CLOSED or PERIOD_NOT_OPEN"
// @Router /api/reports/month-close [post]
func CloseMonth(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req monthCloseRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		var by string
		if u := middleware.CurrentUser(c); u != nil {
			by = u.Username
		}
		res, err := svc.CloseMonth(c.UserContext(), stock.Period{Year: req.Year, Month: req.Month}, by)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(response.Envelope{
			Status:  true,
			Data:    res,
			Message: "month " + stock.Period{Year: req.Year, Month: req.Month}.String() + " closed",
		})
	}
}

// ListMonthCloses returns the history of closed months, most recent first.
//
// @Summary Month close history
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope{data=[]model.MonthClose}
// @Router /api/reports/month-close [get]
func ListMonthCloses(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Closes(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusOK, items)
	}
}

// MonthCloseArchive returns a temporary download URL for a closed month's CSV report.
//
// @Summary Archived month report
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param year path int true "year"
// @Param month path int true "month"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "ARCHIVE_NOT_FOUND"
// @Router /api/reports/month-close/{year}/{month}/archive [get]
func MonthCloseArchive(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := periodFromStrings(c.Params("year"), c.Params("month"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERIOD", "year and month must be integers")
		}
		url, err := svc.ArchiveURL(c.UserContext(), p)
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusOK, fiber.Map{"url": url})
	}
}

func periodFromStrings(year, month string) (stock.Period, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return stock.Period{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return stock.Period{}, false
	}
	return stock.Period{Year: y, Month: m}, true
}
