// Package leadenrichment provides the composition root for lead enrichment.
package leadenrichment

import (
	"leadflow_backend/internal/leadenrichment/client"
	"leadflow_backend/internal/leadenrichment/service"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Module wires the lead enrichment service.
type Module struct {
	service *service.Service
}

// NewModule creates a new lead enrichment module. Without ENRICHMENT_URL
// only pushed enrichment is accepted.
func NewModule(cfg config.EnrichmentConfig, log *logger.Logger) *Module {
	var fetcher service.Fetcher
	if url := cfg.GetEnrichmentURL(); url != "" {
		fetcher = client.New(url, cfg.GetEnrichmentTimeout(), log)
	}
	svc := service.New(fetcher, cfg.GetEnrichmentBatchSize(), log)
	return &Module{service: svc}
}

// Service returns the enrichment service.
func (m *Module) Service() *service.Service {
	return m.service
}
