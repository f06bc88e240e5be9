package repository

import (
	"context"

	"github.com/unionhall/outreach-engine/internal/domain"
	"gorm.io/gorm"
)

// MemberRepository is the member-directory query port used by recipient
// generation.
type MemberRepository interface {
	// FindEligible resolves targeting criteria against the org directory.
	// The query always restricts to the organization and to members with a
	// non-null email; each present, non-empty criterion adds an AND filter.
	FindEligible(ctx context.Context, orgID string, criteria domain.TargetCriteria) ([]domain.Member, error)
}

type GormMemberRepo struct {
	db *gorm.DB
}

func NewGormMemberRepo(db *gorm.DB) *GormMemberRepo {
	return &GormMemberRepo{db: db}
}

func (r *GormMemberRepo) FindEligible(ctx context.Context, orgID string, criteria domain.TargetCriteria) ([]domain.Member, error) {
	query := r.db.WithContext(ctx).
		Model(&MemberModel{}).
		Where("org_id = ? AND email IS NOT NULL", orgID)

	if len(criteria.Departments) > 0 {
		query = query.Where("department_id IN ?", criteria.Departments)
	}
	if len(criteria.Statuses) > 0 {
		query = query.Where("status IN ?", criteria.Statuses)
	}
	if len(criteria.EmploymentTypes) > 0 {
		query = query.Where("employment_type IN ?", criteria.EmploymentTypes)
	}

	var models []MemberModel
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(models))
	for i := range models {
		members = append(members, *memberModelToDomain(&models[i]))
	}

	return members, nil
}
