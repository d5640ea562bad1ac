package pipeline

import (
	"math"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// DaysInStageAt returns the rounded whole days p has spent in its current stage.
func DaysInStageAt(p domain.PipelineLead, now time.Time) int {
	return wholeDays(now.Sub(p.StageEnteredAt))
}

// HealthAt classifies how long p has sat in its stage. Closed stages are
// always healthy.
func HealthAt(p domain.PipelineLead, now time.Time) domain.HealthStatus {
	threshold := p.Stage.RotThreshold()
	if p.Stage.IsClosed() || math.IsInf(threshold, 1) {
		return domain.HealthHealthy
	}
	days := float64(DaysInStageAt(p, now))
	switch {
	case days >= threshold:
		return domain.HealthAtRisk
	case days >= threshold*0.5:
		return domain.HealthAging
	default:
		return domain.HealthHealthy
	}
}

// HealthPercentageAt returns how far p is toward rotting, 0..100. Stages
// without a threshold report 0.
func HealthPercentageAt(p domain.PipelineLead, now time.Time) float64 {
	threshold := p.Stage.RotThreshold()
	if math.IsInf(threshold, 1) {
		return 0
	}
	pct := float64(DaysInStageAt(p, now)) / threshold * 100
	return math.Max(0, math.Min(100, pct))
}

// DaysInStage returns days in the current stage for one lead.
func (e *Engine) DaysInStage(pipelineID string) (int, bool) {
	p := e.find(pipelineID)
	if p == nil {
		return 0, false
	}
	return DaysInStageAt(*p, e.now()), true
}

// Health returns the rot status for one lead.
func (e *Engine) Health(pipelineID string) (domain.HealthStatus, bool) {
	p := e.find(pipelineID)
	if p == nil {
		return "", false
	}
	return HealthAt(*p, e.now()), true
}

// HealthPercentage returns the rot percentage for one lead.
func (e *Engine) HealthPercentage(pipelineID string) (float64, bool) {
	p := e.find(pipelineID)
	if p == nil {
		return 0, false
	}
	return HealthPercentageAt(*p, e.now()), true
}

// TotalValue sums deal values over every lead not in lost.
func (e *Engine) TotalValue() float64 {
	total := 0.0
	for _, p := range e.leads {
		if p.Stage != domain.StageLost {
			total += p.Deal()
		}
	}
	return total
}

// WeightedValue sums deal value times win probability over open leads
// (won and lost excluded).
func (e *Engine) WeightedValue() float64 {
	total := 0.0
	for _, p := range e.leads {
		if p.Stage.IsClosed() {
			continue
		}
		total += weighted(p)
	}
	return total
}

// StageValue sums deal values of the leads in stage.
func (e *Engine) StageValue(stage domain.Stage) float64 {
	total := 0.0
	for _, p := range e.leads {
		if p.Stage == stage {
			total += p.Deal()
		}
	}
	return total
}

// StageWeightedValue sums probability-weighted deal values of the leads in stage.
func (e *Engine) StageWeightedValue(stage domain.Stage) float64 {
	total := 0.0
	for _, p := range e.leads {
		if p.Stage == stage {
			total += weighted(p)
		}
	}
	return total
}

func weighted(p *domain.PipelineLead) float64 {
	return p.Deal() * float64(p.EffectiveWinProbability()) / 100
}

// LeadsByStage groups lead copies by stage. Every stage has an entry.
func (e *Engine) LeadsByStage() map[domain.Stage][]domain.PipelineLead {
	out := make(map[domain.Stage][]domain.PipelineLead, len(domain.Stages))
	for _, s := range domain.Stages {
		out[s] = []domain.PipelineLead{}
	}
	for _, p := range e.leads {
		out[p.Stage] = append(out[p.Stage], p.Clone())
	}
	return out
}

// LeadsInStage returns copies of the leads currently in stage.
func (e *Engine) LeadsInStage(stage domain.Stage) []domain.PipelineLead {
	out := []domain.PipelineLead{}
	for _, p := range e.leads {
		if p.Stage == stage {
			out = append(out, p.Clone())
		}
	}
	return out
}

// AtRisk returns every lead whose health is at_risk.
func (e *Engine) AtRisk() []domain.PipelineLead {
	now := e.now()
	out := []domain.PipelineLead{}
	for _, p := range e.leads {
		if HealthAt(*p, now) == domain.HealthAtRisk {
			out = append(out, p.Clone())
		}
	}
	return out
}

// StageMetrics summarizes one stage.
type StageMetrics struct {
	Stage          domain.Stage `json:"stage"`
	Count          int          `json:"count"`
	Value          float64      `json:"value"`
	WeightedValue  float64      `json:"weightedValue"`
	AvgDaysInStage float64      `json:"avgDaysInStage"`
	AtRisk         int          `json:"atRisk"`
}

// Analytics is a point-in-time summary of the whole pipeline.
type Analytics struct {
	TotalLeads    int            `json:"totalLeads"`
	TotalValue    float64        `json:"totalValue"`
	WeightedValue float64        `json:"weightedValue"`
	WonCount      int            `json:"wonCount"`
	LostCount     int            `json:"lostCount"`
	WonValue      float64        `json:"wonValue"`
	WinRate       float64        `json:"winRate"`
	AvgDealSize   float64        `json:"avgDealSize"`
	AtRiskCount   int            `json:"atRiskCount"`
	FollowUpsDue  int            `json:"followUpsDue"`
	Stages        []StageMetrics `json:"stages"`
}

// Analytics computes per-stage and overall metrics.
func (e *Engine) Analytics() Analytics {
	now := e.now()
	a := Analytics{
		TotalLeads:    len(e.leads),
		TotalValue:    e.TotalValue(),
		WeightedValue: e.WeightedValue(),
	}

	byStage := make(map[domain.Stage]*StageMetrics, len(domain.Stages))
	daySums := make(map[domain.Stage]int, len(domain.Stages))
	for _, s := range domain.Stages {
		byStage[s] = &StageMetrics{Stage: s}
	}

	dealCount := 0
	for _, p := range e.leads {
		m, ok := byStage[p.Stage]
		if !ok {
			continue
		}
		m.Count++
		m.Value += p.Deal()
		m.WeightedValue += weighted(p)
		daySums[p.Stage] += DaysInStageAt(*p, now)

		if HealthAt(*p, now) == domain.HealthAtRisk {
			m.AtRisk++
			a.AtRiskCount++
		}
		if p.NextFollowUpAt != nil && !p.NextFollowUpAt.After(now) {
			a.FollowUpsDue++
		}
		if p.DealValue != nil && p.Stage != domain.StageLost {
			dealCount++
		}

		switch p.Stage {
		case domain.StageWon:
			a.WonCount++
			a.WonValue += p.Deal()
		case domain.StageLost:
			a.LostCount++
		}
	}

	if closed := a.WonCount + a.LostCount; closed > 0 {
		a.WinRate = float64(a.WonCount) / float64(closed) * 100
	}
	if dealCount > 0 {
		a.AvgDealSize = a.TotalValue / float64(dealCount)
	}

	a.Stages = make([]StageMetrics, 0, len(domain.Stages))
	for _, s := range domain.Stages {
		m := byStage[s]
		if m.Count > 0 {
			m.AvgDaysInStage = math.Round(float64(daySums[s])/float64(m.Count)*10) / 10
		}
		a.Stages = append(a.Stages, *m)
	}
	return a
}
