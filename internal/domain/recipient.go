package domain

import (
	"fmt"
	"strings"
	"time"
)

// RecipientStatus represents the delivery state of a single recipient row.
type RecipientStatus string

const (
	RecipientStatusPending RecipientStatus = "PENDING"
	RecipientStatusSent    RecipientStatus = "SENT"
	RecipientStatusFailed  RecipientStatus = "FAILED"
	RecipientStatusSkipped RecipientStatus = "SKIPPED"
)

func (s RecipientStatus) String() string { return string(s) }

func (s RecipientStatus) IsValid() bool {
	switch s {
	case RecipientStatusPending, RecipientStatusSent, RecipientStatusFailed, RecipientStatusSkipped:
		return true
	}
	return false
}

func ParseRecipientStatusFromString(s string) (RecipientStatus, error) {
	st := RecipientStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid recipient status %q", ErrValidation, s)
	}
	return st, nil
}

// Recipient is one delivery target of a campaign. Email and Name are
// snapshots taken at generation time and are never re-derived from the
// member record, so later directory edits do not alter a running campaign.
type Recipient struct {
	ID            string
	CampaignID    string
	MemberID      *string
	Email         string
	Name          string
	Status        RecipientStatus
	FailureReason *string
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r *Recipient) Validate() error {
	if strings.TrimSpace(r.CampaignID) == "" {
		return fmt.Errorf("%w: campaign id is required", ErrValidation)
	}
	if !ValidEmail(r.Email) {
		return fmt.Errorf("%w: invalid recipient email %q", ErrValidation, r.Email)
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: invalid recipient status %q", ErrValidation, r.Status)
	}
	return nil
}
