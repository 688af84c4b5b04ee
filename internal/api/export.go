package api

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// ExportPayments streams the payment collection as CSV, one row per
// payment, most recent first, header row first.
func (h *Handlers) ExportPayments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="meridian-payments-%d.csv"`, time.Now().Unix()))

	cw := csv.NewWriter(w)
	header := []string{"Date", "Beneficiary", "Corridor", "Destination Amount", "Total SGD", "Fee", "Status", "Reference"}
	if err := cw.Write(header); err != nil {
		log.Printf("[api] csv header: %v", err)
		return
	}

	for _, p := range h.store.Payments() {
		name := "Unknown"
		if b, ok := h.store.Beneficiary(p.BeneficiaryID); ok {
			name = b.Name
		}
		row := []string{
			p.CreatedAt.UTC().Format(time.RFC3339),
			name,
			strings.ReplaceAll(string(p.Corridor), "_", " -> "),
			fmt.Sprintf("%.2f", p.DestAmount),
			fmt.Sprintf("%.2f", p.TotalToPaySGD),
			fmt.Sprintf("%.2f", p.FeeSGD),
			string(p.Status),
			p.Reference,
		}
		if err := cw.Write(row); err != nil {
			log.Printf("[api] csv row: %v", err)
			return
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("[api] csv flush: %v", err)
	}
}
