package store

import (
	"time"

	"github.com/meridianpay/meridian/internal/domain"
)

// DashboardStats holds the aggregates the dashboard renders.
type DashboardStats struct {
	Volume30dSGD float64          `json:"volume_30d_sgd"`
	InTransit    int              `json:"in_transit"`
	AvgFeeSGD    float64          `json:"avg_fee_sgd"`
	Recent       []domain.Payment `json:"recent"`
}

// Dashboard computes 30-day volume, in-flight count, average fee and
// the ten most recent payments.
func (s *Store) Dashboard() DashboardStats {
	payments := s.Payments()
	now := s.now()

	stats := DashboardStats{Recent: payments}
	if len(payments) > 10 {
		stats.Recent = payments[:10]
	}

	var feeSum float64
	for _, p := range payments {
		feeSum += p.FeeSGD
		if now.Sub(p.CreatedAt) < 30*24*time.Hour {
			stats.Volume30dSGD += p.TotalToPaySGD
		}
		if p.Status != domain.StatusDelivered && p.Status != domain.StatusFailed {
			stats.InTransit++
		}
	}
	if len(payments) > 0 {
		stats.AvgFeeSGD = feeSum / float64(len(payments))
	}
	return stats
}
