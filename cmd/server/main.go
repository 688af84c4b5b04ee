package main

import (
	"log"
	"net/http"

	"github.com/meridianpay/meridian/internal/api"
	"github.com/meridianpay/meridian/internal/config"
	"github.com/meridianpay/meridian/internal/pricing"
	"github.com/meridianpay/meridian/internal/progress"
	"github.com/meridianpay/meridian/internal/rates"
	"github.com/meridianpay/meridian/internal/repository"
	"github.com/meridianpay/meridian/internal/store"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Initializing database at %s", cfg.DBPath)
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	stateRepo := repository.NewStateRepo(db, cfg.StoreSlot)
	table := rates.Default()
	calc := pricing.NewCalculator(table)

	st := store.New(calc, stateRepo)
	if err := st.Load(); err != nil {
		log.Fatalf("Failed to load store state: %v", err)
	}
	log.Printf("Store loaded: %d beneficiaries, %d payments",
		len(st.Beneficiaries()), len(st.Payments()))

	delays, err := cfg.ProgressDelays()
	if err != nil {
		log.Printf("WARNING: invalid PROGRESS_DELAYS_MS, using defaults: %v", err)
		delays = nil
	}
	sim := progress.NewSimulator(st, delays, func(id string) {
		if err := st.Save(); err != nil {
			log.Printf("WARNING: persist after progress tick: %v", err)
		}
	})
	defer sim.Stop()

	router := api.NewRouter(st, table, sim, cfg.AllowedOrigins())

	log.Printf("Meridian Cross-Border Payments")
	log.Printf("Listening on http://localhost:%s", cfg.Port)
	log.Printf("API base: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  GET    /api/v1/rates")
	log.Printf("  GET    /api/v1/beneficiaries")
	log.Printf("  POST   /api/v1/beneficiaries")
	log.Printf("  PUT    /api/v1/beneficiaries/{id}")
	log.Printf("  DELETE /api/v1/beneficiaries/{id}")
	log.Printf("  POST   /api/v1/quotes")
	log.Printf("  GET    /api/v1/payments")
	log.Printf("  POST   /api/v1/payments")
	log.Printf("  GET    /api/v1/payments/export")
	log.Printf("  GET    /api/v1/payments/{id}")
	log.Printf("  POST   /api/v1/payments/{id}/advance")
	log.Printf("  GET    /api/v1/dashboard")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
