package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxLabelNameLength is the maximum number of characters in a label name.
const MaxLabelNameLength = 50

// Label tags a task. Names are unique per task, not globally, and are
// compared case-sensitively.
type Label struct {
	ID     uuid.UUID `json:"id"`
	TaskID uuid.UUID `json:"task_id"`
	Name   string    `json:"name"`
}

// DedupeLabelNames returns names with every repeated entry removed,
// keeping the first occurrence of each.
func DedupeLabelNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ValidateLabelNames checks every name in names.
func ValidateLabelNames(names []string) error {
	for _, n := range names {
		if err := validateLabelName(n); err != nil {
			return err
		}
	}
	return nil
}

func validateLabelName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("labels", "cannot contain an empty name", nil)
	}
	if utf8.RuneCountInString(name) > MaxLabelNameLength {
		return NewValidationError("labels", "names must be at most 50 characters", nil)
	}
	return nil
}

// LabelNames returns the names of the task's labels in their current order.
func (t *Task) LabelNames() []string {
	names := make([]string, len(t.Labels))
	for i, l := range t.Labels {
		names[i] = l.Name
	}
	return names
}

// HasLabel reports whether the task carries a label called name.
func (t *Task) HasLabel(name string) bool {
	for _, l := range t.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// SetLabels replaces the task's label set with the deduplicated names.
func (t *Task) SetLabels(names []string) {
	deduped := DedupeLabelNames(names)
	labels := make([]Label, 0, len(deduped))
	for _, n := range deduped {
		labels = append(labels, t.newLabel(n))
	}
	t.Labels = labels
}

// AddLabels appends every name the task does not already carry.
// Re-adding an existing name is a no-op. It returns the names actually added.
func (t *Task) AddLabels(names []string) []string {
	var added []string
	for _, n := range DedupeLabelNames(names) {
		if t.HasLabel(n) {
			continue
		}
		t.Labels = append(t.Labels, t.newLabel(n))
		added = append(added, n)
	}
	return added
}

// RemoveLabels drops every label whose name is in names.
// Names the task does not carry are ignored. It returns the names actually removed.
func (t *Task) RemoveLabels(names []string) []string {
	if len(names) == 0 || len(t.Labels) == 0 {
		return nil
	}

	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	var removed []string
	kept := make([]Label, 0, len(t.Labels))
	for _, l := range t.Labels {
		if _, ok := drop[l.Name]; ok {
			removed = append(removed, l.Name)
			continue
		}
		kept = append(kept, l)
	}
	t.Labels = kept
	return removed
}

func (t *Task) newLabel(name string) Label {
	return Label{
		ID:     uuid.New(),
		TaskID: t.ID,
		Name:   name,
	}
}
