package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CampaignStatus represents the lifecycle state of an email campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusScheduled CampaignStatus = "SCHEDULED"
	CampaignStatusSending   CampaignStatus = "SENDING"
	CampaignStatusPaused    CampaignStatus = "PAUSED"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusCancelled CampaignStatus = "CANCELLED"
)

func (s CampaignStatus) String() string { return string(s) }

func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusScheduled, CampaignStatusSending,
		CampaignStatusPaused, CampaignStatusCompleted, CampaignStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusCancelled
}

// IsStartable reports whether a campaign in this state may begin sending.
func (s CampaignStatus) IsStartable() bool {
	return s == CampaignStatusDraft || s == CampaignStatusScheduled
}

func ParseCampaignStatusFromString(s string) (CampaignStatus, error) {
	st := CampaignStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid campaign status %q", ErrValidation, s)
	}
	return st, nil
}

// TargetCriteria is the structured member filter a campaign is resolved
// against. Empty or nil slices impose no restriction; present criteria are
// combined with AND semantics.
type TargetCriteria struct {
	Departments     []string `json:"departments,omitempty"`
	Statuses        []string `json:"statuses,omitempty"`
	EmploymentTypes []string `json:"employmentTypes,omitempty"`
}

// IsEmpty reports whether the criteria impose no restriction at all.
func (c TargetCriteria) IsEmpty() bool {
	return len(c.Departments) == 0 && len(c.Statuses) == 0 && len(c.EmploymentTypes) == 0
}

// Value implements driver.Valuer so criteria persist as a jsonb column.
func (c TargetCriteria) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for jsonb round-trips.
func (c *TargetCriteria) Scan(value any) error {
	if value == nil {
		*c = TargetCriteria{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported target criteria column type %T", value)
	}
}

// Campaign is an organization-scoped email campaign. TotalRecipients,
// SentCount, and FailedCount are monotonic bookkeeping once sending begins;
// SentCount + FailedCount never exceeds TotalRecipients.
type Campaign struct {
	ID              string
	OrgID           string
	Name            string
	Subject         string
	BodyHTML        string
	BodyText        string
	FromName        string
	FromEmail       string
	Status          CampaignStatus
	TargetCriteria  TargetCriteria
	TotalRecipients int
	SentCount       int
	FailedCount     int
	ScheduledAt     *time.Time
	StartedAt       *time.Time
	PausedAt        *time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c *Campaign) Validate() error {
	if strings.TrimSpace(c.OrgID) == "" {
		return fmt.Errorf("%w: organization id is required", ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: campaign name is required", ErrValidation)
	}
	if strings.TrimSpace(c.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(c.BodyHTML) == "" && strings.TrimSpace(c.BodyText) == "" {
		return fmt.Errorf("%w: campaign body is required", ErrValidation)
	}
	if !ValidEmail(c.FromEmail) {
		return fmt.Errorf("%w: invalid sender email %q", ErrValidation, c.FromEmail)
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("%w: invalid campaign status %q", ErrValidation, c.Status)
	}
	return nil
}

// ValidEmail is the minimal address check applied during recipient
// generation: the address must be non-empty and contain an @.
func ValidEmail(email string) bool {
	trimmed := strings.TrimSpace(email)
	return trimmed != "" && strings.Contains(trimmed, "@")
}
