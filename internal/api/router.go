package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/meridianpay/meridian/internal/progress"
	"github.com/meridianpay/meridian/internal/rates"
	"github.com/meridianpay/meridian/internal/store"
)

// NewRouter creates the Chi router with all API routes mounted. The
// origins list feeds the CORS middleware so a browser front end can
// call the API directly.
func NewRouter(st *store.Store, table *rates.Table, sim *progress.Simulator, origins []string) http.Handler {
	h := &Handlers{store: st, table: table, sim: sim}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Rates.
		r.Get("/rates", h.GetRates)

		// Beneficiaries.
		r.Get("/beneficiaries", h.ListBeneficiaries)
		r.Post("/beneficiaries", h.CreateBeneficiary)
		r.Put("/beneficiaries/{id}", h.UpdateBeneficiary)
		r.Delete("/beneficiaries/{id}", h.DeleteBeneficiary)

		// Quotes.
		r.Post("/quotes", h.MakeQuote)

		// Payments.
		r.Get("/payments", h.ListPayments)
		r.Post("/payments", h.ConfirmPayment)
		r.Get("/payments/export", h.ExportPayments)
		r.Get("/payments/{id}", h.GetPayment)
		r.Post("/payments/{id}/advance", h.AdvancePayment)

		// Dashboard.
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
