package models

import (
	"strings"
	"time"
)

// SubjectKind classifies how a subject is delivered and therefore how long a session lasts.
type SubjectKind string

const (
	SubjectKindLecture      SubjectKind = "LECTURE"
	SubjectKindPractical    SubjectKind = "PRACTICAL"
	SubjectKindInternship   SubjectKind = "INTERNSHIP"
	SubjectKindUnclassified SubjectKind = "UNCLASSIFIED"
)

// Subject represents a course or module in the catalog.
type Subject struct {
	ID                  string      `db:"id" json:"id"`
	Code                string      `db:"code" json:"code"`
	Name                string      `db:"name" json:"name"`
	Kind                SubjectKind `db:"kind" json:"kind"`
	RequiredRoomType    *string     `db:"required_room_type" json:"required_room_type,omitempty"`
	SpecializationGroup *string     `db:"specialization_group" json:"specialization_group,omitempty"`
	TotalPeriods        *float64    `db:"total_periods" json:"total_periods,omitempty"`
	MaxClassSize        int         `db:"max_class_size" json:"max_class_size"`
	ExternalManaged     bool        `db:"external_managed" json:"external_managed"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

// ResolvedKind returns the stored classification, inferring it from the code
// for rows imported before kinds were recorded.
func (s Subject) ResolvedKind() SubjectKind {
	if s.Kind != "" {
		return s.Kind
	}
	return InferSubjectKind(s.Code)
}

// InferSubjectKind applies the code-prefix convention:
// TT internship, MĐ/MD practical module, MH lecture.
func InferSubjectKind(code string) SubjectKind {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(normalized, "TT"):
		return SubjectKindInternship
	case strings.HasPrefix(normalized, "MĐ"), strings.HasPrefix(normalized, "MD"):
		return SubjectKindPractical
	case strings.HasPrefix(normalized, "MH"):
		return SubjectKindLecture
	default:
		return SubjectKindUnclassified
	}
}
