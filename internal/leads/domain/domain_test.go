package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestStageRules(t *testing.T) {
	cases := []struct {
		stage       Stage
		rot         float64
		probability int
	}{
		{StageNew, 3, 10},
		{StageContacted, 5, 20},
		{StageQualified, 7, 40},
		{StageProposal, 10, 60},
		{StageNegotiation, 14, 80},
		{StageWon, math.Inf(1), 100},
		{StageLost, math.Inf(1), 0},
	}
	for _, tc := range cases {
		if got := tc.stage.RotThreshold(); got != tc.rot {
			t.Errorf("%s.RotThreshold() = %v, want %v", tc.stage, got, tc.rot)
		}
		if got := tc.stage.DefaultWinProbability(); got != tc.probability {
			t.Errorf("%s.DefaultWinProbability() = %d, want %d", tc.stage, got, tc.probability)
		}
	}
	if Stage("archived").IsValid() {
		t.Fatalf("expected unknown stage to be invalid")
	}
}

func TestSocialFollowersTotal(t *testing.T) {
	ig, fb := 6000, 4500
	s := &SocialFollowers{Instagram: &ig, Facebook: &fb}
	if got := s.Total(); got != 10500 {
		t.Fatalf("expected 10500, got %d", got)
	}
	var missing *SocialFollowers
	if got := missing.Total(); got != 0 {
		t.Fatalf("expected 0 for nil followers, got %d", got)
	}
}

func TestPipelineLeadCloneIsDeep(t *testing.T) {
	deal := 1200.0
	p := PipelineLead{
		Lead:         Lead{ID: "l1", BusinessName: "Acme"},
		Tags:         []string{"vip"},
		Notes:        []string{},
		CustomFields: []CustomField{{Key: "owner", Value: "sam"}},
		DealValue:    &deal,
	}
	c := p.Clone()
	c.Tags[0] = "changed"
	*c.DealValue = 1
	c.CustomFields[0].Value = "alex"

	if p.Tags[0] != "vip" || *p.DealValue != 1200 || p.CustomFields[0].Value != "sam" {
		t.Fatalf("clone shares memory with original: %+v", p)
	}
	if c.Notes == nil {
		t.Fatalf("expected empty notes to stay non-nil")
	}
}

func TestPipelineLeadJSONFlattensLead(t *testing.T) {
	p := PipelineLead{Lead: Lead{ID: "l1", BusinessName: "Acme"}, PipelineID: "pipeline-1", Stage: StageNew}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, want := range []string{`"businessName":"Acme"`, `"pipelineId":"pipeline-1"`, `"stage":"new"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
}
