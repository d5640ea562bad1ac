// Package domain holds the lead and pipeline entity model shared by the
// scoring and pipeline engines.
package domain

import "time"

// EmailVerificationStatus values reported by the verification collaborator.
const (
	EmailValid      = "valid"
	EmailInvalid    = "invalid"
	EmailCatchAll   = "catchall"
	EmailDisposable = "disposable"
	EmailUnknown    = "unknown"
)

// Lead is a business produced by discovery. Optional numeric fields are
// pointers so "absent" and "zero" stay distinguishable.
type Lead struct {
	ID           string `json:"id"`
	BusinessName string `json:"businessName"`
	Category     string `json:"category"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip,omitempty"`
	Country      string `json:"country,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Website      string `json:"website,omitempty"`

	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	YouTube   string `json:"youtube,omitempty"`

	GoogleRating            *float64 `json:"googleRating,omitempty"`
	ReviewCount             *int     `json:"reviewCount,omitempty"`
	EmailVerificationStatus *string  `json:"emailVerificationStatus,omitempty"`

	// LeadScore is the cached total score; score-range filters read it.
	LeadScore *int `json:"leadScore,omitempty"`
}

// HasIdentity reports whether the lead carries an id or a business name.
func (l Lead) HasIdentity() bool {
	return l.ID != "" || l.BusinessName != ""
}

// SocialFollowers holds per-platform follower counts.
type SocialFollowers struct {
	Instagram *int `json:"instagram,omitempty"`
	Facebook  *int `json:"facebook,omitempty"`
	LinkedIn  *int `json:"linkedin,omitempty"`
	Twitter   *int `json:"twitter,omitempty"`
}

// Total sums the platforms that are present.
func (s *SocialFollowers) Total() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, n := range []*int{s.Instagram, s.Facebook, s.LinkedIn, s.Twitter} {
		if n != nil {
			total += *n
		}
	}
	return total
}

// JobPosting is a hiring signal. Carried but not scored.
type JobPosting struct {
	Title    string     `json:"title"`
	PostedAt *time.Time `json:"postedAt,omitempty"`
	URL      string     `json:"url,omitempty"`
}

// EnrichmentData is the structured result of the enrichment collaborator.
// JobPostings, EmployeeCount, HasRecentFunding and FundingAmount are accepted
// but do not contribute to the score yet.
type EnrichmentData struct {
	Technologies      []string         `json:"technologies"`
	DomainAge         *float64         `json:"domainAge,omitempty"`
	PerformanceScore  *float64         `json:"performanceScore,omitempty"`
	IsMobileFriendly  *bool            `json:"isMobileFriendly,omitempty"`
	SocialFollowers   *SocialFollowers `json:"socialFollowers,omitempty"`
	LastWebsiteUpdate *time.Time       `json:"lastWebsiteUpdate,omitempty"`

	JobPostings      []JobPosting `json:"jobPostings,omitempty"`
	EmployeeCount    *int         `json:"employeeCount,omitempty"`
	HasRecentFunding *bool        `json:"hasRecentFunding,omitempty"`
	FundingAmount    *float64     `json:"fundingAmount,omitempty"`
}
