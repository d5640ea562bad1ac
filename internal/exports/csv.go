package exports

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
)

const (
	rowDateLayout      = "01/02/2006"
	filenameDateLayout = "2006-01-02"
	defaultFilename    = "leads"
)

var leadHeaders = []string{
	"Business Name",
	"Category",
	"Address",
	"City",
	"State",
	"Phone",
	"Email",
	"Website",
	"Instagram",
	"Facebook",
	"LinkedIn",
	"Twitter",
	"Google Rating",
	"Review Count",
	"Lead Score",
	"Stage",
	"Tags",
	"Last Contacted",
	"Contact Method",
	"Next Follow-up",
	"Added Date",
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// leadRow renders one pipeline lead in header order.
func leadRow(p domain.PipelineLead) []string {
	row := []string{
		p.BusinessName,
		p.Category,
		p.Address,
		p.City,
		p.State,
		p.Phone,
		p.Email,
		p.Website,
		p.Instagram,
		p.Facebook,
		p.LinkedIn,
		p.Twitter,
		"",
		"",
		"",
		string(p.Stage),
		strings.Join(p.Tags, ", "),
		formatDate(p.LastContactedAt),
		"",
		formatDate(p.NextFollowUpAt),
		formatDate(&p.AddedAt),
	}
	if p.GoogleRating != nil {
		row[12] = strconv.FormatFloat(*p.GoogleRating, 'f', 1, 64)
	}
	if p.ReviewCount != nil {
		row[13] = strconv.Itoa(*p.ReviewCount)
	}
	if p.LeadScore != nil {
		row[14] = strconv.Itoa(*p.LeadScore)
	}
	if p.LastContactMethod != nil {
		row[18] = string(*p.LastContactMethod)
	}
	return row
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(rowDateLayout)
}

// WriteLeads writes the header and one row per lead. Fields containing
// commas, quotes or newlines are quoted.
func WriteLeads(w io.Writer, leads []domain.PipelineLead) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(leadHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range leads {
		if err := writer.Write(leadRow(p)); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.PipelineID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Filename builds "<name>-YYYY-MM-DD.csv" with the name reduced to safe
// characters.
func Filename(name string, now time.Time) string {
	cleaned := strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(name), "-"), "-")
	if cleaned == "" {
		cleaned = defaultFilename
	}
	return fmt.Sprintf("%s-%s.csv", cleaned, now.UTC().Format(filenameDateLayout))
}
