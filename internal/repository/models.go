package repository

import (
	"time"

	"github.com/unionhall/outreach-engine/internal/domain"
)

// CampaignModel is the persistence model for the campaigns table.
type CampaignModel struct {
	ID              string                `gorm:"type:uuid;primaryKey"`
	OrgID           string                `gorm:"type:uuid;not null;index"`
	Name            string                `gorm:"type:varchar(255);not null"`
	Subject         string                `gorm:"type:varchar(255);not null"`
	BodyHTML        string                `gorm:"type:text;not null"`
	BodyText        string                `gorm:"type:text"`
	FromName        string                `gorm:"type:varchar(255);not null"`
	FromEmail       string                `gorm:"type:varchar(255);not null"`
	Status          domain.CampaignStatus `gorm:"type:varchar(20);not null"`
	TargetCriteria  domain.TargetCriteria `gorm:"type:jsonb"`
	TotalRecipients int                   `gorm:"not null;default:0"`
	SentCount       int                   `gorm:"not null;default:0"`
	FailedCount     int                   `gorm:"not null;default:0"`
	ScheduledAt     *time.Time            `gorm:"type:timestamptz"`
	StartedAt       *time.Time            `gorm:"type:timestamptz"`
	PausedAt        *time.Time            `gorm:"type:timestamptz"`
	CompletedAt     *time.Time            `gorm:"type:timestamptz"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (CampaignModel) TableName() string {
	return "campaigns"
}

// RecipientModel is the persistence model for campaign_recipients.
type RecipientModel struct {
	ID            string                 `gorm:"type:uuid;primaryKey"`
	CampaignID    string                 `gorm:"type:uuid;not null"`
	MemberID      *string                `gorm:"type:uuid"`
	Email         string                 `gorm:"type:varchar(255);not null"`
	Name          string                 `gorm:"type:varchar(255)"`
	Status        domain.RecipientStatus `gorm:"type:varchar(20);not null"`
	FailureReason *string                `gorm:"type:text"`
	SentAt        *time.Time             `gorm:"type:timestamptz"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (RecipientModel) TableName() string {
	return "campaign_recipients"
}

// MemberModel is the persistence model for the member directory.
type MemberModel struct {
	ID             string                `gorm:"type:uuid;primaryKey"`
	OrgID          string                `gorm:"type:uuid;not null;index"`
	DepartmentID   *string               `gorm:"type:uuid"`
	FirstName      string                `gorm:"type:varchar(255);not null"`
	LastName       string                `gorm:"type:varchar(255);not null"`
	Email          *string               `gorm:"type:varchar(255)"`
	Status         domain.MemberStatus   `gorm:"type:varchar(20);not null"`
	EmploymentType domain.EmploymentType `gorm:"type:varchar(20);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (MemberModel) TableName() string {
	return "members"
}

// AccountModel is the persistence model for dashboard accounts.
type AccountModel struct {
	ID        string      `gorm:"type:uuid;primaryKey"`
	OrgID     string      `gorm:"type:uuid;not null;index"`
	Email     string      `gorm:"type:varchar(255);not null"`
	Role      domain.Role `gorm:"type:varchar(20);not null"`
	APIToken  string      `gorm:"type:varchar(64);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AccountModel) TableName() string {
	return "accounts"
}

func campaignModelFromDomain(c *domain.Campaign) *CampaignModel {
	if c == nil {
		return nil
	}

	return &CampaignModel{
		ID:              c.ID,
		OrgID:           c.OrgID,
		Name:            c.Name,
		Subject:         c.Subject,
		BodyHTML:        c.BodyHTML,
		BodyText:        c.BodyText,
		FromName:        c.FromName,
		FromEmail:       c.FromEmail,
		Status:          c.Status,
		TargetCriteria:  c.TargetCriteria,
		TotalRecipients: c.TotalRecipients,
		SentCount:       c.SentCount,
		FailedCount:     c.FailedCount,
		ScheduledAt:     c.ScheduledAt,
		StartedAt:       c.StartedAt,
		PausedAt:        c.PausedAt,
		CompletedAt:     c.CompletedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func campaignModelToDomain(m *CampaignModel) *domain.Campaign {
	if m == nil {
		return nil
	}

	return &domain.Campaign{
		ID:              m.ID,
		OrgID:           m.OrgID,
		Name:            m.Name,
		Subject:         m.Subject,
		BodyHTML:        m.BodyHTML,
		BodyText:        m.BodyText,
		FromName:        m.FromName,
		FromEmail:       m.FromEmail,
		Status:          m.Status,
		TargetCriteria:  m.TargetCriteria,
		TotalRecipients: m.TotalRecipients,
		SentCount:       m.SentCount,
		FailedCount:     m.FailedCount,
		ScheduledAt:     m.ScheduledAt,
		StartedAt:       m.StartedAt,
		PausedAt:        m.PausedAt,
		CompletedAt:     m.CompletedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func recipientModelFromDomain(r *domain.Recipient) *RecipientModel {
	if r == nil {
		return nil
	}

	return &RecipientModel{
		ID:            r.ID,
		CampaignID:    r.CampaignID,
		MemberID:      r.MemberID,
		Email:         r.Email,
		Name:          r.Name,
		Status:        r.Status,
		FailureReason: r.FailureReason,
		SentAt:        r.SentAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func recipientModelToDomain(m *RecipientModel) *domain.Recipient {
	if m == nil {
		return nil
	}

	return &domain.Recipient{
		ID:            m.ID,
		CampaignID:    m.CampaignID,
		MemberID:      m.MemberID,
		Email:         m.Email,
		Name:          m.Name,
		Status:        m.Status,
		FailureReason: m.FailureReason,
		SentAt:        m.SentAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func memberModelToDomain(m *MemberModel) *domain.Member {
	if m == nil {
		return nil
	}

	return &domain.Member{
		ID:             m.ID,
		OrgID:          m.OrgID,
		DepartmentID:   m.DepartmentID,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Email:          m.Email,
		Status:         m.Status,
		EmploymentType: m.EmploymentType,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func accountModelToDomain(m *AccountModel) *domain.Account {
	if m == nil {
		return nil
	}

	return &domain.Account{
		ID:        m.ID,
		OrgID:     m.OrgID,
		Email:     m.Email,
		Role:      m.Role,
		APIToken:  m.APIToken,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
