package pipeline

import (
	"math"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"
)

func TestHealthAt(t *testing.T) {
	tests := []struct {
		stage   domain.Stage
		days    int
		want    domain.HealthStatus
		wantPct float64
	}{
		{domain.StageProposal, 10, domain.HealthAtRisk, 100},
		{domain.StageProposal, 5, domain.HealthAging, 50},
		{domain.StageProposal, 4, domain.HealthHealthy, 40},
		{domain.StageNew, 3, domain.HealthAtRisk, 100},
		{domain.StageNew, 2, domain.HealthAging, 200.0 / 3},
		{domain.StageNegotiation, 30, domain.HealthAtRisk, 100},
		{domain.StageWon, 400, domain.HealthHealthy, 0},
		{domain.StageLost, 400, domain.HealthHealthy, 0},
	}
	for _, tt := range tests {
		p := domain.PipelineLead{Stage: tt.stage, StageEnteredAt: testStart}
		now := testStart.Add(time.Duration(tt.days) * day)
		if got := HealthAt(p, now); got != tt.want {
			t.Errorf("HealthAt(%s, %d days) = %q, want %q", tt.stage, tt.days, got, tt.want)
		}
		if got := HealthPercentageAt(p, now); math.Abs(got-tt.wantPct) > 1e-9 {
			t.Errorf("HealthPercentageAt(%s, %d days) = %v, want %v", tt.stage, tt.days, got, tt.wantPct)
		}
	}
}

func TestDaysInStageRoundsHalfUp(t *testing.T) {
	p := domain.PipelineLead{Stage: domain.StageNew, StageEnteredAt: testStart}
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{11 * time.Hour, 0},
		{12 * time.Hour, 1},
		{day + 11*time.Hour, 1},
		{day + 12*time.Hour, 2},
	}
	for _, tt := range tests {
		if got := DaysInStageAt(p, testStart.Add(tt.elapsed)); got != tt.want {
			t.Errorf("DaysInStageAt(%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

func TestWeightedValueExcludesClosedStages(t *testing.T) {
	e, _ := newTestEngine()
	a := promote(t, e, "a", "Alpha")
	b := promote(t, e, "b", "Bravo")
	e.UpdateStage(a.PipelineID, domain.StageQualified)
	e.UpdateStage(b.PipelineID, domain.StageWon)
	e.SetDealValue(a.PipelineID, floatPtr(1000))
	e.SetDealValue(b.PipelineID, floatPtr(2000))

	if got := e.WeightedValue(); got != 400 {
		t.Fatalf("expected weighted value 400, got %v", got)
	}
	if got := e.TotalValue(); got != 3000 {
		t.Fatalf("expected total value 3000, got %v", got)
	}
	if got := e.StageWeightedValue(domain.StageWon); got != 2000 {
		t.Fatalf("expected won stage weighted value 2000, got %v", got)
	}
}

func TestTotalValueExcludesLost(t *testing.T) {
	e, _ := newTestEngine()
	a := promote(t, e, "a", "Alpha")
	b := promote(t, e, "b", "Bravo")
	e.SetDealValue(a.PipelineID, floatPtr(500))
	e.SetDealValue(b.PipelineID, floatPtr(700))
	e.UpdateStage(b.PipelineID, domain.StageLost)
	e.SetWinProbability(a.PipelineID, intPtr(50))

	if got := e.TotalValue(); got != 500 {
		t.Fatalf("expected total 500, got %v", got)
	}
	if got := e.WeightedValue(); got != 250 {
		t.Fatalf("expected override-weighted 250, got %v", got)
	}
	if got := e.StageValue(domain.StageLost); got != 700 {
		t.Fatalf("expected lost stage value 700, got %v", got)
	}
}

func TestLeadsByStageHasEveryStage(t *testing.T) {
	e, _ := newTestEngine()
	promote(t, e, "a", "Alpha")

	groups := e.LeadsByStage()
	if len(groups) != len(domain.Stages) {
		t.Fatalf("expected %d groups, got %d", len(domain.Stages), len(groups))
	}
	if len(groups[domain.StageNew]) != 1 || groups[domain.StageWon] == nil {
		t.Fatalf("unexpected grouping %+v", groups)
	}
}

func TestAtRiskAndAnalytics(t *testing.T) {
	e, clock := newTestEngine()
	a := promote(t, e, "a", "Alpha")
	b := promote(t, e, "b", "Bravo")
	c := promote(t, e, "c", "Charlie")
	e.SetDealValue(a.PipelineID, floatPtr(1000))
	e.SetDealValue(b.PipelineID, floatPtr(3000))
	e.UpdateStage(b.PipelineID, domain.StageWon)
	e.UpdateStage(c.PipelineID, domain.StageLost)
	e.ScheduleFollowUp(a.PipelineID, testStart, "")

	clock.advance(4 * day)
	risky := e.AtRisk()
	if len(risky) != 1 || risky[0].PipelineID != a.PipelineID {
		t.Fatalf("expected only %s at risk, got %d leads", a.PipelineID, len(risky))
	}

	got := e.Analytics()
	if got.TotalLeads != 3 || got.WonCount != 1 || got.LostCount != 1 {
		t.Fatalf("unexpected counts %+v", got)
	}
	if got.WinRate != 50 {
		t.Fatalf("expected win rate 50, got %v", got.WinRate)
	}
	if got.TotalValue != 4000 || got.WonValue != 3000 || got.AvgDealSize != 2000 {
		t.Fatalf("unexpected values %+v", got)
	}
	if got.WeightedValue != 100 || got.AtRiskCount != 1 || got.FollowUpsDue != 1 {
		t.Fatalf("unexpected weighted/risk/due %+v", got)
	}
	if len(got.Stages) != len(domain.Stages) {
		t.Fatalf("expected %d stage rows, got %d", len(domain.Stages), len(got.Stages))
	}
	newRow := got.Stages[0]
	if newRow.Stage != domain.StageNew || newRow.Count != 1 || newRow.AvgDaysInStage != 4 || newRow.AtRisk != 1 {
		t.Fatalf("unexpected new stage row %+v", newRow)
	}
}

func TestAnalyticsEmptyPipeline(t *testing.T) {
	e, _ := newTestEngine()
	got := e.Analytics()
	if got.TotalLeads != 0 || got.WinRate != 0 || got.AvgDealSize != 0 {
		t.Fatalf("expected zero analytics, got %+v", got)
	}
}
