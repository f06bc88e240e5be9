package repository

import (
	"context"
	"errors"
	"time"

	"github.com/unionhall/outreach-engine/internal/domain"
	"gorm.io/gorm"
)

// CampaignListParams filters and pages org campaign listings.
type CampaignListParams struct {
	Status   *domain.CampaignStatus
	Page     int
	PageSize int
}

// TransitionChanges carries the column updates applied together with a
// status compare-and-swap. Nil pointer fields clear the column.
type TransitionChanges struct {
	TotalRecipients *int
	SentCount       *int
	FailedCount     *int
	StartedAt       *time.Time
	SetPausedAt     bool
	PausedAt        *time.Time
	CompletedAt     *time.Time
}

// CampaignRepository is the persistence port for campaigns. Every lookup is
// scoped to the caller's organization; a campaign owned by another org is
// indistinguishable from a missing one.
type CampaignRepository interface {
	Create(ctx context.Context, c *domain.Campaign) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Campaign, error)
	List(ctx context.Context, orgID string, params CampaignListParams) ([]domain.Campaign, int64, error)
	// Transition atomically moves the campaign from one of the allowed
	// statuses to the target status, applying changes in the same UPDATE.
	// It reports false when the row was not in an allowed status anymore.
	Transition(ctx context.Context, orgID, id string, from []domain.CampaignStatus, to domain.CampaignStatus, changes TransitionChanges) (bool, error)
	IncrementSent(ctx context.Context, orgID, id string) error
	IncrementFailed(ctx context.Context, orgID, id string) error
}

type GormCampaignRepo struct {
	db *gorm.DB
}

func NewGormCampaignRepo(db *gorm.DB) *GormCampaignRepo {
	return &GormCampaignRepo{db: db}
}

func (r *GormCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	model := campaignModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if c != nil {
		*c = *campaignModelToDomain(model)
	}
	return nil
}

func (r *GormCampaignRepo) GetByID(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	var model CampaignModel
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return campaignModelToDomain(&model), nil
}

func (r *GormCampaignRepo) List(ctx context.Context, orgID string, params CampaignListParams) ([]domain.Campaign, int64, error) {
	query := r.db.WithContext(ctx).Model(&CampaignModel{}).Where("org_id = ?", orgID)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	pageSize = min(pageSize, 100)

	var models []CampaignModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	campaigns := make([]domain.Campaign, 0, len(models))
	for i := range models {
		campaigns = append(campaigns, *campaignModelToDomain(&models[i]))
	}

	return campaigns, total, nil
}

func (r *GormCampaignRepo) Transition(
	ctx context.Context,
	orgID, id string,
	from []domain.CampaignStatus,
	to domain.CampaignStatus,
	changes TransitionChanges,
) (bool, error) {
	updates := map[string]any{"status": to}
	if changes.TotalRecipients != nil {
		updates["total_recipients"] = *changes.TotalRecipients
	}
	if changes.SentCount != nil {
		updates["sent_count"] = *changes.SentCount
	}
	if changes.FailedCount != nil {
		updates["failed_count"] = *changes.FailedCount
	}
	if changes.StartedAt != nil {
		updates["started_at"] = *changes.StartedAt
	}
	if changes.SetPausedAt {
		updates["paused_at"] = changes.PausedAt
	}
	if changes.CompletedAt != nil {
		updates["completed_at"] = *changes.CompletedAt
	}

	result := r.db.WithContext(ctx).
		Model(&CampaignModel{}).
		Where("org_id = ? AND id = ? AND status IN ?", orgID, id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormCampaignRepo) IncrementSent(ctx context.Context, orgID, id string) error {
	return r.incrementCounter(ctx, orgID, id, "sent_count")
}

func (r *GormCampaignRepo) IncrementFailed(ctx context.Context, orgID, id string) error {
	return r.incrementCounter(ctx, orgID, id, "failed_count")
}

func (r *GormCampaignRepo) incrementCounter(ctx context.Context, orgID, id, column string) error {
	result := r.db.WithContext(ctx).
		Model(&CampaignModel{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Update(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
