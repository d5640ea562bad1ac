package transport

import (
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/scoring"
)

// Request DTOs

// LeadRequest is a discovered lead as sent by the discovery collaborator.
type LeadRequest struct {
	ID                      string   `json:"id" validate:"omitempty,max=200"`
	BusinessName            string   `json:"businessName" validate:"omitempty,max=300"`
	Category                string   `json:"category" validate:"omitempty,max=200"`
	Address                 string   `json:"address,omitempty" validate:"omitempty,max=300"`
	City                    string   `json:"city" validate:"omitempty,max=100"`
	State                   string   `json:"state" validate:"omitempty,max=100"`
	Zip                     string   `json:"zip,omitempty" validate:"omitempty,max=20"`
	Country                 string   `json:"country,omitempty" validate:"omitempty,max=100"`
	Phone                   string   `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email                   string   `json:"email,omitempty" validate:"omitempty,email"`
	Website                 string   `json:"website,omitempty" validate:"omitempty,max=2048"`
	Instagram               string   `json:"instagram,omitempty" validate:"omitempty,max=300"`
	Facebook                string   `json:"facebook,omitempty" validate:"omitempty,max=300"`
	LinkedIn                string   `json:"linkedin,omitempty" validate:"omitempty,max=300"`
	Twitter                 string   `json:"twitter,omitempty" validate:"omitempty,max=300"`
	TikTok                  string   `json:"tiktok,omitempty" validate:"omitempty,max=300"`
	YouTube                 string   `json:"youtube,omitempty" validate:"omitempty,max=300"`
	GoogleRating            *float64 `json:"googleRating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount             *int     `json:"reviewCount,omitempty" validate:"omitempty,gte=0"`
	EmailVerificationStatus *string  `json:"emailVerificationStatus,omitempty" validate:"omitempty,oneof=valid invalid catchall disposable unknown"`
	LeadScore               *int     `json:"leadScore,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ToDomain converts the request to the domain lead.
func (r LeadRequest) ToDomain() domain.Lead {
	return domain.Lead{
		ID:                      r.ID,
		BusinessName:            r.BusinessName,
		Category:                r.Category,
		Address:                 r.Address,
		City:                    r.City,
		State:                   r.State,
		Zip:                     r.Zip,
		Country:                 r.Country,
		Phone:                   r.Phone,
		Email:                   r.Email,
		Website:                 r.Website,
		Instagram:               r.Instagram,
		Facebook:                r.Facebook,
		LinkedIn:                r.LinkedIn,
		Twitter:                 r.Twitter,
		TikTok:                  r.TikTok,
		YouTube:                 r.YouTube,
		GoogleRating:            r.GoogleRating,
		ReviewCount:             r.ReviewCount,
		EmailVerificationStatus: r.EmailVerificationStatus,
		LeadScore:               r.LeadScore,
	}
}

// FollowersRequest carries per-platform follower counts.
type FollowersRequest struct {
	Instagram *int `json:"instagram,omitempty" validate:"omitempty,gte=0"`
	Facebook  *int `json:"facebook,omitempty" validate:"omitempty,gte=0"`
	LinkedIn  *int `json:"linkedin,omitempty" validate:"omitempty,gte=0"`
	Twitter   *int `json:"twitter,omitempty" validate:"omitempty,gte=0"`
}

// EnrichmentRequest is enrichment data pushed by the enrichment collaborator.
type EnrichmentRequest struct {
	Technologies      []string            `json:"technologies" validate:"omitempty,max=200,dive,max=200"`
	DomainAge         *float64            `json:"domainAge,omitempty" validate:"omitempty,gte=0"`
	PerformanceScore  *float64            `json:"performanceScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsMobileFriendly  *bool               `json:"isMobileFriendly,omitempty"`
	SocialFollowers   *FollowersRequest   `json:"socialFollowers,omitempty"`
	LastWebsiteUpdate *time.Time          `json:"lastWebsiteUpdate,omitempty"`
	JobPostings       []domain.JobPosting `json:"jobPostings,omitempty" validate:"-"`
	EmployeeCount     *int                `json:"employeeCount,omitempty" validate:"omitempty,gte=0"`
	HasRecentFunding  *bool               `json:"hasRecentFunding,omitempty"`
	FundingAmount     *float64            `json:"fundingAmount,omitempty" validate:"omitempty,gte=0"`
}

// ToDomain converts the request to domain enrichment data.
func (r EnrichmentRequest) ToDomain() domain.EnrichmentData {
	data := domain.EnrichmentData{
		Technologies:      r.Technologies,
		DomainAge:         r.DomainAge,
		PerformanceScore:  r.PerformanceScore,
		IsMobileFriendly:  r.IsMobileFriendly,
		LastWebsiteUpdate: r.LastWebsiteUpdate,
		JobPostings:       r.JobPostings,
		EmployeeCount:     r.EmployeeCount,
		HasRecentFunding:  r.HasRecentFunding,
		FundingAmount:     r.FundingAmount,
	}
	if data.Technologies == nil {
		data.Technologies = []string{}
	}
	if f := r.SocialFollowers; f != nil {
		data.SocialFollowers = &domain.SocialFollowers{
			Instagram: f.Instagram,
			Facebook:  f.Facebook,
			LinkedIn:  f.LinkedIn,
			Twitter:   f.Twitter,
		}
	}
	return data
}

type ScoreLeadRequest struct {
	Lead       LeadRequest       `json:"lead"`
	Enrichment EnrichmentRequest `json:"enrichment"`
}

type PipelinePotentialRequest struct {
	Leads []LeadRequest `json:"leads" validate:"max=10000,dive"`
}

type PromoteLeadRequest struct {
	Lead LeadRequest `json:"lead"`
}

type UpdateStageRequest struct {
	Stage domain.Stage `json:"stage" validate:"required,oneof=new contacted qualified proposal negotiation won lost"`
}

type BulkUpdateStageRequest struct {
	PipelineIDs []string     `json:"pipelineIds" validate:"required,min=1,max=500,dive,required"`
	Stage       domain.Stage `json:"stage" validate:"required,oneof=new contacted qualified proposal negotiation won lost"`
}

type BulkDeleteRequest struct {
	PipelineIDs []string `json:"pipelineIds" validate:"required,min=1,max=500,dive,required"`
}

type TrackContactRequest struct {
	Method domain.ContactMethod `json:"method" validate:"required,oneof=email phone instagram facebook linkedin twitter website in_person"`
	Notes  string               `json:"notes,omitempty" validate:"max=2000"`
}

type AddNoteRequest struct {
	Note string `json:"note" validate:"required,min=1,max=5000"`
}

type AddTagRequest struct {
	Tag string `json:"tag" validate:"required,min=1,max=50"`
}

type CustomFieldRequest struct {
	Key   string `json:"key" validate:"required,min=1,max=100"`
	Value string `json:"value" validate:"max=1000"`
}

type UpdateCustomFieldRequest struct {
	Value string `json:"value" validate:"max=1000"`
}

// SetDealValueRequest sets or, with a null value, clears the deal value.
type SetDealValueRequest struct {
	DealValue *float64 `json:"dealValue" validate:"omitempty,gte=0"`
}

// SetWinProbabilityRequest sets or, with a null value, clears the override.
type SetWinProbabilityRequest struct {
	WinProbability *int `json:"winProbability" validate:"omitempty,gte=0,lte=100"`
}

type ScheduleFollowUpRequest struct {
	At   time.Time `json:"at" validate:"required"`
	Note string    `json:"note,omitempty" validate:"max=2000"`
}

type EnrichRequest struct {
	PipelineIDs []string `json:"pipelineIds" validate:"required,min=1,max=100,dive,required"`
}

// FiltersRequest mirrors pipeline.Filters with validation.
type FiltersRequest struct {
	Stages         []domain.Stage `json:"stages,omitempty" validate:"omitempty,dive,oneof=new contacted qualified proposal negotiation won lost"`
	Tags           []string       `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
	MinValue       *float64       `json:"minValue,omitempty" validate:"omitempty,gte=0"`
	MaxValue       *float64       `json:"maxValue,omitempty" validate:"omitempty,gte=0"`
	MinScore       *int           `json:"minScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	MaxScore       *int           `json:"maxScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	MinDaysInStage *int           `json:"minDaysInStage,omitempty" validate:"omitempty,gte=0"`
	MaxDaysInStage *int           `json:"maxDaysInStage,omitempty" validate:"omitempty,gte=0"`
	IsAtRisk       bool           `json:"isAtRisk,omitempty"`
	HasFollowUp    bool           `json:"hasFollowUp,omitempty"`
	NoFollowUp     bool           `json:"noFollowUp,omitempty"`
	SearchQuery    string         `json:"searchQuery,omitempty" validate:"max=200"`
}

// ToFilters converts the request to engine filters.
func (r FiltersRequest) ToFilters() pipeline.Filters {
	return pipeline.Filters{
		Stages:         r.Stages,
		Tags:           r.Tags,
		MinValue:       r.MinValue,
		MaxValue:       r.MaxValue,
		MinScore:       r.MinScore,
		MaxScore:       r.MaxScore,
		MinDaysInStage: r.MinDaysInStage,
		MaxDaysInStage: r.MaxDaysInStage,
		IsAtRisk:       r.IsAtRisk,
		HasFollowUp:    r.HasFollowUp,
		NoFollowUp:     r.NoFollowUp,
		SearchQuery:    r.SearchQuery,
	}
}

type SaveViewRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type SaveLeadRequest struct {
	Lead     LeadRequest `json:"lead"`
	Category string      `json:"category,omitempty" validate:"max=200"`
	Location string      `json:"location,omitempty" validate:"max=200"`
}

type RecordSearchRequest struct {
	Category string        `json:"category" validate:"required,max=200"`
	Location string        `json:"location" validate:"required,max=200"`
	Leads    []LeadRequest `json:"leads" validate:"max=1000,dive"`
}

type SetSelectionRequest struct {
	PipelineIDs []string `json:"pipelineIds" validate:"max=1000"`
}

type SetFocusRequest struct {
	Index int `json:"index" validate:"gte=-1"`
}

// Response DTOs

// PipelineLeadResponse is a pipeline lead with its derived health fields.
type PipelineLeadResponse struct {
	domain.PipelineLead
	DaysInStage      int                 `json:"daysInStage"`
	Health           domain.HealthStatus `json:"health"`
	HealthPercentage float64             `json:"healthPercentage"`
}

type PipelineLeadListResponse struct {
	Items []PipelineLeadResponse `json:"items"`
	Total int                    `json:"total"`
}

type PromoteLeadResponse struct {
	Lead    PipelineLeadResponse `json:"lead"`
	Created bool                 `json:"created"`
}

type BulkUpdateStageResponse struct {
	Moved []string `json:"moved"`
	Count int      `json:"count"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

type ScoreLeadResponse struct {
	scoring.Result
	Category          string                    `json:"category"`
	OpportunityValue  scoring.OpportunityValue  `json:"opportunityValue"`
	ReviewOpportunity scoring.ReviewOpportunity `json:"reviewOpportunity"`
}

type BoardColumn struct {
	Stage         domain.Stage           `json:"stage"`
	Leads         []PipelineLeadResponse `json:"leads"`
	Value         float64                `json:"value"`
	WeightedValue float64                `json:"weightedValue"`
}

type BoardResponse struct {
	Columns []BoardColumn `json:"columns"`
}

type MetricsResponse struct {
	pipeline.Analytics
	Potential scoring.PipelinePotential `json:"potential"`
}

type FiltersResponse struct {
	Filters       pipeline.Filters `json:"filters"`
	CurrentViewID string           `json:"currentViewId,omitempty"`
	Matching      int              `json:"matching"`
}

type QuickFilterResponse struct {
	pipeline.QuickFilter
	Active bool `json:"active"`
}

type WorkspaceResponse struct {
	Workspace    string   `json:"workspace"`
	FocusedIndex int      `json:"focusedIndex"`
	SelectedIDs  []string `json:"selectedIds"`
}

type EnrichResponse struct {
	Requested int      `json:"requested"`
	Applied   int      `json:"applied"`
	Stale     int      `json:"stale"`
	Failed    int      `json:"failed"`
	Missing   []string `json:"missing,omitempty"`
}

type PushEnrichmentResponse struct {
	Lead  PipelineLeadResponse `json:"lead"`
	Score ScoreLeadResponse    `json:"score"`
}
