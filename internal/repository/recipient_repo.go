package repository

import (
	"context"
	"time"

	"github.com/unionhall/outreach-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusSummary is one per-status row count for a campaign.
type StatusSummary struct {
	Status domain.RecipientStatus `gorm:"column:status"`
	Count  int                    `gorm:"column:count"`
}

// RecipientRepository is the persistence port for campaign recipient rows.
type RecipientRepository interface {
	// CreateBatch bulk-inserts recipient rows, silently skipping rows that
	// collide on the (campaign_id, member_id) unique index.
	CreateBatch(ctx context.Context, recipients []*domain.Recipient) error
	CountByCampaign(ctx context.Context, campaignID string) (int64, error)
	CountByStatus(ctx context.Context, campaignID string, status domain.RecipientStatus) (int64, error)
	ListPending(ctx context.Context, campaignID string, limit int) ([]domain.Recipient, error)
	// MarkSent flips a PENDING row to SENT; it reports false when the row
	// was no longer pending (claimed by another worker or skipped).
	MarkSent(ctx context.Context, id string, sentAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id string, reason string) (bool, error)
	// SkipPending bulk-moves all PENDING rows of a campaign to SKIPPED and
	// returns the number of rows affected.
	SkipPending(ctx context.Context, campaignID string) (int64, error)
	SummaryByStatus(ctx context.Context, campaignID string) ([]StatusSummary, error)
}

type GormRecipientRepo struct {
	db *gorm.DB
}

func NewGormRecipientRepo(db *gorm.DB) *GormRecipientRepo {
	return &GormRecipientRepo{db: db}
}

func (r *GormRecipientRepo) CreateBatch(ctx context.Context, recipients []*domain.Recipient) error {
	models := make([]RecipientModel, 0, len(recipients))
	for _, recipient := range recipients {
		model := recipientModelFromDomain(recipient)
		if model != nil {
			models = append(models, *model)
		}
	}

	if len(models) == 0 {
		return nil
	}

	// The unique index on (campaign_id, member_id) is partial, so the
	// conflict target must repeat its predicate for Postgres to accept it
	// as the arbiter.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "campaign_id"}, {Name: "member_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("member_id IS NOT NULL")}},
			DoNothing:   true,
		}).
		CreateInBatches(&models, 100).Error
}

func (r *GormRecipientRepo) CountByCampaign(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RecipientModel{}).
		Where("campaign_id = ?", campaignID).
		Count(&count).Error
	return count, err
}

func (r *GormRecipientRepo) CountByStatus(ctx context.Context, campaignID string, status domain.RecipientStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RecipientModel{}).
		Where("campaign_id = ? AND status = ?", campaignID, status).
		Count(&count).Error
	return count, err
}

func (r *GormRecipientRepo) ListPending(ctx context.Context, campaignID string, limit int) ([]domain.Recipient, error) {
	if limit < 1 {
		limit = 50
	}

	var models []RecipientModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND status = ?", campaignID, domain.RecipientStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	recipients := make([]domain.Recipient, 0, len(models))
	for i := range models {
		recipients = append(recipients, *recipientModelToDomain(&models[i]))
	}

	return recipients, nil
}

func (r *GormRecipientRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&RecipientModel{}).
		Where("id = ? AND status = ?", id, domain.RecipientStatusPending).
		Updates(map[string]any{
			"status":  domain.RecipientStatusSent,
			"sent_at": sentAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormRecipientRepo) MarkFailed(ctx context.Context, id string, reason string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&RecipientModel{}).
		Where("id = ? AND status = ?", id, domain.RecipientStatusPending).
		Updates(map[string]any{
			"status":         domain.RecipientStatusFailed,
			"failure_reason": reason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormRecipientRepo) SkipPending(ctx context.Context, campaignID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&RecipientModel{}).
		Where("campaign_id = ? AND status = ?", campaignID, domain.RecipientStatusPending).
		Update("status", domain.RecipientStatusSkipped)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormRecipientRepo) SummaryByStatus(ctx context.Context, campaignID string) ([]StatusSummary, error) {
	var summaries []StatusSummary
	err := r.db.WithContext(ctx).
		Model(&RecipientModel{}).
		Select("status, COUNT(*) as count").
		Where("campaign_id = ?", campaignID).
		Group("status").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
