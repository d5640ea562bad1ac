package domain

import "math"

// Stage is a pipeline position.
type Stage string

const (
	StageNew         Stage = "new"
	StageContacted   Stage = "contacted"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
)

// Stages lists every stage in board order.
var Stages = []Stage{
	StageNew,
	StageContacted,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageWon,
	StageLost,
}

type stageRules struct {
	rotDays     float64 // +Inf for terminal stages
	probability int
}

var stageTable = map[Stage]stageRules{
	StageNew:         {rotDays: 3, probability: 10},
	StageContacted:   {rotDays: 5, probability: 20},
	StageQualified:   {rotDays: 7, probability: 40},
	StageProposal:    {rotDays: 10, probability: 60},
	StageNegotiation: {rotDays: 14, probability: 80},
	StageWon:         {rotDays: math.Inf(1), probability: 100},
	StageLost:        {rotDays: math.Inf(1), probability: 0},
}

// IsValid reports whether s is one of the seven stages.
func (s Stage) IsValid() bool {
	_, ok := stageTable[s]
	return ok
}

// IsClosed reports whether s is won or lost.
func (s Stage) IsClosed() bool {
	return s == StageWon || s == StageLost
}

// RotThreshold returns the days after which a lead in s is at risk.
// Closed stages return +Inf.
func (s Stage) RotThreshold() float64 {
	if r, ok := stageTable[s]; ok {
		return r.rotDays
	}
	return math.Inf(1)
}

// DefaultWinProbability returns the stage's default close probability in percent.
func (s Stage) DefaultWinProbability() int {
	return stageTable[s].probability
}

// ContactMethod is the channel used to reach a lead.
type ContactMethod string

const (
	ContactEmail     ContactMethod = "email"
	ContactPhone     ContactMethod = "phone"
	ContactInstagram ContactMethod = "instagram"
	ContactFacebook  ContactMethod = "facebook"
	ContactLinkedIn  ContactMethod = "linkedin"
	ContactTwitter   ContactMethod = "twitter"
	ContactWebsite   ContactMethod = "website"
	ContactInPerson  ContactMethod = "in_person"
)

// IsValid reports whether m is a known contact method.
func (m ContactMethod) IsValid() bool {
	switch m {
	case ContactEmail, ContactPhone, ContactInstagram, ContactFacebook,
		ContactLinkedIn, ContactTwitter, ContactWebsite, ContactInPerson:
		return true
	}
	return false
}

// ActivityType classifies an activity log entry.
type ActivityType string

const (
	ActivityContacted         ActivityType = "contacted"
	ActivityNoteAdded         ActivityType = "note_added"
	ActivityStageChanged      ActivityType = "stage_changed"
	ActivityTagAdded          ActivityType = "tag_added"
	ActivityFollowUpScheduled ActivityType = "follow_up_scheduled"
	ActivityEnriched          ActivityType = "enriched"
)

// HealthStatus is the rot classification of a lead in its current stage.
type HealthStatus string

const (
	HealthHealthy HealthStatus = "healthy"
	HealthAging   HealthStatus = "aging"
	HealthAtRisk  HealthStatus = "at_risk"
)
