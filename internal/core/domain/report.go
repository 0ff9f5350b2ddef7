// internal/core/domain/report.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportType decides which collection a report's resourceId points into.
type ReportType string

const (
	ReportTypePublication ReportType = "publication"
	ReportTypeItinerary   ReportType = "itinerary"
)

// IsValid reports whether t is a known report type.
func (t ReportType) IsValid() bool {
	return t == ReportTypePublication || t == ReportTypeItinerary
}

// ReportStatus tracks moderation of a report.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusResolved ReportStatus = "resolved"
	ReportStatusRejected ReportStatus = "rejected"
)

// IsValid reports whether s is a known report status.
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusResolved, ReportStatusRejected:
		return true
	}
	return false
}

// Report is a user's complaint about a publication or an itinerary.
type Report struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Type        ReportType   `json:"type"`
	ResourceID  string       `json:"resourceId"`
	Reason      string       `json:"reason"`
	Description string       `json:"description,omitempty"`
	Status      ReportStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ReportPatch carries the mutable report fields. Type and ResourceID are only
// present so that attempts to change them can be rejected.
type ReportPatch struct {
	Type        *ReportType   `json:"type,omitempty"`
	ResourceID  *string       `json:"resourceId,omitempty"`
	Reason      *string       `json:"reason,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *ReportStatus `json:"status,omitempty"`
}

// Validate performs domain validation on the report
func (r *Report) Validate() error {
	v := &ValidationError{}
	if r.UserID == "" {
		v.Add("userId", "is required")
	}
	if !r.Type.IsValid() {
		v.Add("type", "must be one of publication, itinerary")
	}
	if r.ResourceID == "" {
		v.Add("resourceId", "is required")
	}
	if r.Reason == "" {
		v.Add("reason", "is required")
	}
	if r.Status == "" {
		r.Status = ReportStatusPending
	}
	if !r.Status.IsValid() {
		v.Add("status", "must be one of pending, resolved, rejected")
	}
	return v.OrNil()
}

// PrepareForStorage prepares the report for database storage
func (r *Report) PrepareForStorage() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// Apply merges the patch. The type/resourceId pairing is immutable.
func (r *Report) Apply(p *ReportPatch) error {
	if p == nil {
		return nil
	}

	v := &ValidationError{}
	if p.Type != nil && *p.Type != r.Type {
		v.Add("type", "cannot be changed")
	}
	if p.ResourceID != nil && *p.ResourceID != r.ResourceID {
		v.Add("resourceId", "cannot be changed")
	}
	if p.Status != nil && !p.Status.IsValid() {
		v.Add("status", "must be one of pending, resolved, rejected")
	}
	if p.Reason != nil && *p.Reason == "" {
		v.Add("reason", "cannot be empty")
	}
	if err := v.OrNil(); err != nil {
		return err
	}

	if p.Reason != nil {
		r.Reason = *p.Reason
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	r.UpdatedAt = time.Now().UTC()
	return nil
}
