// Package client provides the HTTP client for the external enrichment
// collaborator.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

const defaultHTTPTimeout = 30 * time.Second

// FlexNumber handles JSON values that can be either string or number.
type FlexNumber float64

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexNumber(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexNumber(parsed)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexNumber", string(data))
}

// Client posts leads to the enrichment collaborator.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a client for endpoint. A non-positive timeout uses the default.
func New(endpoint string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type enrichRequest struct {
	LeadID       string `json:"leadId"`
	BusinessName string `json:"businessName"`
	Website      string `json:"website"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
}

type followers struct {
	Instagram *FlexNumber `json:"instagram"`
	Facebook  *FlexNumber `json:"facebook"`
	LinkedIn  *FlexNumber `json:"linkedin"`
	Twitter   *FlexNumber `json:"twitter"`
}

// enrichResponse mirrors domain.EnrichmentData with lenient numeric fields.
type enrichResponse struct {
	Technologies      []string            `json:"technologies"`
	DomainAge         *FlexNumber         `json:"domainAge"`
	PerformanceScore  *FlexNumber         `json:"performanceScore"`
	IsMobileFriendly  *bool               `json:"isMobileFriendly"`
	SocialFollowers   *followers          `json:"socialFollowers"`
	LastWebsiteUpdate *time.Time          `json:"lastWebsiteUpdate"`
	JobPostings       []domain.JobPosting `json:"jobPostings"`
	EmployeeCount     *FlexNumber         `json:"employeeCount"`
	HasRecentFunding  *bool               `json:"hasRecentFunding"`
	FundingAmount     *FlexNumber         `json:"fundingAmount"`
}

// Fetch asks the collaborator for enrichment data about lead.
func (c *Client) Fetch(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error) {
	body, err := json.Marshal(enrichRequest{
		LeadID:       lead.ID,
		BusinessName: lead.BusinessName,
		Website:      lead.Website,
		City:         lead.City,
		State:        lead.State,
	})
	if err != nil {
		return domain.EnrichmentData{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.EnrichmentData{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("enrichment request failed", "lead_id", lead.ID, "error", err)
		return domain.EnrichmentData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("enrichment request error", "lead_id", lead.ID, "status", resp.StatusCode)
		return domain.EnrichmentData{}, fmt.Errorf("enrichment status %d", resp.StatusCode)
	}

	var payload enrichResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("enrichment decode failed", "lead_id", lead.ID, "error", err)
		return domain.EnrichmentData{}, err
	}
	return payload.toDomain(), nil
}

func (r enrichResponse) toDomain() domain.EnrichmentData {
	data := domain.EnrichmentData{
		Technologies:      r.Technologies,
		DomainAge:         toFloat64Ptr(r.DomainAge),
		PerformanceScore:  toFloat64Ptr(r.PerformanceScore),
		IsMobileFriendly:  r.IsMobileFriendly,
		LastWebsiteUpdate: r.LastWebsiteUpdate,
		JobPostings:       r.JobPostings,
		EmployeeCount:     toIntPtr(r.EmployeeCount),
		HasRecentFunding:  r.HasRecentFunding,
		FundingAmount:     toFloat64Ptr(r.FundingAmount),
	}
	if data.Technologies == nil {
		data.Technologies = []string{}
	}
	if r.SocialFollowers != nil {
		data.SocialFollowers = &domain.SocialFollowers{
			Instagram: toIntPtr(r.SocialFollowers.Instagram),
			Facebook:  toIntPtr(r.SocialFollowers.Facebook),
			LinkedIn:  toIntPtr(r.SocialFollowers.LinkedIn),
			Twitter:   toIntPtr(r.SocialFollowers.Twitter),
		}
	}
	return data
}

// toFloat64Ptr converts a FlexNumber pointer to a float64 pointer.
func toFloat64Ptr(value *FlexNumber) *float64 {
	if value == nil {
		return nil
	}
	v := float64(*value)
	return &v
}

func toIntPtr(value *FlexNumber) *int {
	if value == nil {
		return nil
	}
	v := int(*value)
	return &v
}
