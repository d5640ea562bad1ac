package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"leadflow_backend/internal/leads/domain"
)

// AddNote appends a note and a note_added activity carrying its text.
// Blank notes are ignored.
func (e *Engine) AddNote(pipelineID, note string) bool {
	p := e.find(pipelineID)
	note = strings.TrimSpace(note)
	if p == nil || note == "" {
		return false
	}
	p.Notes = append(p.Notes, note)
	e.appendActivity(p, domain.Activity{
		Type:        domain.ActivityNoteAdded,
		Description: "Note added",
		Details:     note,
	})
	return true
}

// AddTag adds tag once and logs a tag_added activity.
func (e *Engine) AddTag(pipelineID, tag string) bool {
	p := e.find(pipelineID)
	tag = strings.TrimSpace(tag)
	if p == nil || tag == "" || p.HasTag(tag) {
		return false
	}
	p.Tags = append(p.Tags, tag)
	e.appendActivity(p, domain.Activity{
		Type:        domain.ActivityTagAdded,
		Description: fmt.Sprintf("Tag %q added", tag),
		Details:     tag,
	})
	return true
}

// RemoveTag drops tag. No activity is recorded.
func (e *Engine) RemoveTag(pipelineID, tag string) bool {
	p := e.find(pipelineID)
	if p == nil || !p.HasTag(tag) {
		return false
	}
	p.Tags = slices.DeleteFunc(p.Tags, func(t string) bool { return t == tag })
	return true
}

// AllTags returns every distinct tag in use, sorted.
func (e *Engine) AllTags() []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range e.leads {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	slices.Sort(tags)
	return tags
}

// AddCustomField adds key=value unless key already exists. Custom field
// operations never log activities.
func (e *Engine) AddCustomField(pipelineID, key, value string) bool {
	p := e.find(pipelineID)
	key = strings.TrimSpace(key)
	if p == nil || key == "" || p.CustomFieldIndex(key) >= 0 {
		return false
	}
	p.CustomFields = append(p.CustomFields, domain.CustomField{Key: key, Value: value})
	return true
}

// UpdateCustomField sets the value of an existing key.
func (e *Engine) UpdateCustomField(pipelineID, key, value string) bool {
	p := e.find(pipelineID)
	if p == nil {
		return false
	}
	i := p.CustomFieldIndex(key)
	if i < 0 {
		return false
	}
	p.CustomFields[i].Value = value
	return true
}

// RemoveCustomField deletes key.
func (e *Engine) RemoveCustomField(pipelineID, key string) bool {
	p := e.find(pipelineID)
	if p == nil {
		return false
	}
	i := p.CustomFieldIndex(key)
	if i < 0 {
		return false
	}
	p.CustomFields = slices.Delete(p.CustomFields, i, i+1)
	return true
}

// SetDealValue sets or clears (nil) the deal value. Negative values are
// stored as 0.
func (e *Engine) SetDealValue(pipelineID string, value *float64) bool {
	p := e.find(pipelineID)
	if p == nil {
		return false
	}
	if value == nil {
		p.DealValue = nil
		return true
	}
	v := max(0, *value)
	p.DealValue = &v
	return true
}

// SetWinProbability sets or clears (nil) the probability override,
// clamped to 0..100.
func (e *Engine) SetWinProbability(pipelineID string, probability *int) bool {
	p := e.find(pipelineID)
	if p == nil {
		return false
	}
	if probability == nil {
		p.WinProbability = nil
		return true
	}
	v := min(100, max(0, *probability))
	p.WinProbability = &v
	return true
}
