package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"medstock/internal/http/middleware"
	"medstock/internal/service"
)

// Services groups the use cases the API exposes.
type Services struct {
	Auth         service.AuthService
	Medicines    service.MedicineService
	Transactions service.TransactionService
	Reports      service.ReportService
}

// RegisterRoutes attaches the operational endpoints and the /api group to app.
// loginLimit, when non-nil, guards POST /api/login.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, loginLimit fiber.Handler) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	login := []fiber.Handler{Login(svc.Auth)}
	if loginLimit != nil {
		login = append([]fiber.Handler{loginLimit}, login...)
	}
	api.Post("/login", login...)

	authed := api.Group("", middleware.RequireAuth(svc.Auth))
	authed.Post("/logout", Logout(svc.Auth))
	authed.Get("/profile", Profile(svc.Auth))

	authed.Get("/medicines", ListMedicines(svc.Medicines))
	authed.Post("/medicines", CreateMedicine(svc.Medicines))
	authed.Get("/medicines/:id", GetMedicine(svc.Medicines))
	authed.Put("/medicines/:id", UpdateMedicine(svc.Medicines))
	authed.Delete("/medicines/:id", DeleteMedicine(svc.Medicines))

	authed.Get("/stock-transactions", ListTransactions(svc.Transactions))
	authed.Post("/stock-transactions", CreateTransaction(svc.Transactions))
	authed.Get("/transaction-types", ListTransactionTypes(svc.Transactions))

	authed.Get("/reports/daily", DailyReport(svc.Transactions))
	authed.Get("/reports/monthly", MonthlyReport(svc.Reports))
	authed.Post("/reports/month-close", CloseMonth(svc.Reports))
	authed.Get("/reports/month-close", ListMonthCloses(svc.Reports))
	authed.Get("/reports/month-close/:year/:month/archive", MonthCloseArchive(svc.Reports))
}
