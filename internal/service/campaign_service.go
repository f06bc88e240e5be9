package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/unionhall/outreach-engine/internal/domain"
	"github.com/unionhall/outreach-engine/internal/observability"
	"github.com/unionhall/outreach-engine/internal/queue"
	"github.com/unionhall/outreach-engine/internal/repository"
	"go.uber.org/zap"
)

// CampaignService drives the campaign lifecycle: start, pause, resume,
// cancel, plus the surrounding create/read operations.
//
// Transitions are compare-and-swap conditional updates at the repository
// layer, so two racing requests cannot both win the same transition.
type CampaignService struct {
	campaigns  repository.CampaignRepository
	recipients repository.RecipientRepository
	members    repository.MemberRepository
	publisher  queue.Publisher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// CampaignSummary is the per-status recipient breakdown of one campaign.
type CampaignSummary struct {
	CampaignID      string
	Status          domain.CampaignStatus
	TotalRecipients int
	SentCount       int
	FailedCount     int
	Counts          []RecipientStatusCount
}

type RecipientStatusCount struct {
	Status domain.RecipientStatus
	Count  int
}

func NewCampaignService(
	campaigns repository.CampaignRepository,
	recipients repository.RecipientRepository,
	members repository.MemberRepository,
	publisher queue.Publisher,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*CampaignService, error) {
	if campaigns == nil || recipients == nil || members == nil {
		return nil, fmt.Errorf("campaign, recipient, and member repositories are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CampaignService{
		campaigns:  campaigns,
		recipients: recipients,
		members:    members,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}, nil
}

// Create persists a new DRAFT campaign for the caller's organization.
func (s *CampaignService) Create(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if campaign == nil {
		return nil, fmt.Errorf("%w: campaign is required", domain.ErrValidation)
	}

	campaign.ID = strings.TrimSpace(campaign.ID)
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	campaign.Name = strings.TrimSpace(campaign.Name)
	campaign.Subject = strings.TrimSpace(campaign.Subject)
	campaign.FromName = strings.TrimSpace(campaign.FromName)
	campaign.FromEmail = strings.TrimSpace(campaign.FromEmail)
	campaign.Status = domain.CampaignStatusDraft
	if campaign.ScheduledAt != nil {
		campaign.Status = domain.CampaignStatusScheduled
	}
	campaign.TotalRecipients = 0
	campaign.SentCount = 0
	campaign.FailedCount = 0
	campaign.StartedAt = nil
	campaign.PausedAt = nil
	campaign.CompletedAt = nil

	if err := campaign.Validate(); err != nil {
		return nil, err
	}

	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, err
	}

	return campaign, nil
}

// GetByID fetches one campaign, org-scoped.
func (s *CampaignService) GetByID(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: campaign id is required", domain.ErrValidation)
	}
	return s.campaigns.GetByID(ctx, orgID, strings.TrimSpace(id))
}

// List pages the organization's campaigns.
func (s *CampaignService) List(ctx context.Context, orgID string, params repository.CampaignListParams) ([]domain.Campaign, int64, error) {
	return s.campaigns.List(ctx, orgID, params)
}

// GetSummary returns the campaign counters plus per-status recipient counts.
func (s *CampaignService) GetSummary(ctx context.Context, orgID, id string) (*CampaignSummary, error) {
	campaign, err := s.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	summaries, err := s.recipients.SummaryByStatus(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}

	counts := make([]RecipientStatusCount, 0, len(summaries))
	for _, summary := range summaries {
		counts = append(counts, RecipientStatusCount{
			Status: summary.Status,
			Count:  summary.Count,
		})
	}

	return &CampaignSummary{
		CampaignID:      campaign.ID,
		Status:          campaign.Status,
		TotalRecipients: campaign.TotalRecipients,
		SentCount:       campaign.SentCount,
		FailedCount:     campaign.FailedCount,
		Counts:          counts,
	}, nil
}

// Start begins sending a DRAFT or SCHEDULED campaign. On the first start it
// resolves targeting criteria against the member directory and freezes the
// recipient set; later starts (after the freeze) reuse the existing rows.
// A campaign whose criteria match no members with a usable address fails
// without mutating anything.
func (s *CampaignService) Start(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	campaign, err := s.campaigns.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !campaign.Status.IsStartable() {
		return nil, fmt.Errorf("%w: campaign cannot start from status %s", domain.ErrPrecondition, campaign.Status)
	}

	existing, err := s.recipients.CountByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count campaign recipients: %w", err)
	}

	total := int(existing)
	if existing == 0 {
		generated, genErr := s.generateRecipients(ctx, campaign)
		if genErr != nil {
			return nil, genErr
		}
		total = generated
	}

	zero := 0
	startedAt := s.now().UTC()
	ok, err := s.campaigns.Transition(ctx, orgID, campaign.ID,
		[]domain.CampaignStatus{domain.CampaignStatusDraft, domain.CampaignStatusScheduled},
		domain.CampaignStatusSending,
		repository.TransitionChanges{
			TotalRecipients: &total,
			SentCount:       &zero,
			FailedCount:     &zero,
			StartedAt:       &startedAt,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start campaign: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: campaign is no longer startable", domain.ErrPrecondition)
	}

	s.recordTransition("start")
	s.publishDispatch(ctx, orgID, campaign.ID)

	return s.campaigns.GetByID(ctx, orgID, campaign.ID)
}

// Pause halts a SENDING campaign. The delivery worker notices the status
// change between batches and stops claiming recipients.
func (s *CampaignService) Pause(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	campaign, err := s.campaigns.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.CampaignStatusSending {
		return nil, fmt.Errorf("%w: only a SENDING campaign can be paused (status %s)", domain.ErrPrecondition, campaign.Status)
	}

	pausedAt := s.now().UTC()
	ok, err := s.campaigns.Transition(ctx, orgID, campaign.ID,
		[]domain.CampaignStatus{domain.CampaignStatusSending},
		domain.CampaignStatusPaused,
		repository.TransitionChanges{SetPausedAt: true, PausedAt: &pausedAt},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pause campaign: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: campaign is no longer sending", domain.ErrPrecondition)
	}

	s.recordTransition("pause")

	return s.campaigns.GetByID(ctx, orgID, campaign.ID)
}

// Resume continues a PAUSED campaign. With no pending recipients left the
// campaign finalizes to COMPLETED instead.
func (s *CampaignService) Resume(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	campaign, err := s.campaigns.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.CampaignStatusPaused {
		return nil, fmt.Errorf("%w: only a PAUSED campaign can be resumed (status %s)", domain.ErrPrecondition, campaign.Status)
	}

	pending, err := s.recipients.CountByStatus(ctx, campaign.ID, domain.RecipientStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending recipients: %w", err)
	}

	if pending == 0 {
		completedAt := s.now().UTC()
		ok, err := s.campaigns.Transition(ctx, orgID, campaign.ID,
			[]domain.CampaignStatus{domain.CampaignStatusPaused},
			domain.CampaignStatusCompleted,
			repository.TransitionChanges{CompletedAt: &completedAt},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to finalize campaign: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: campaign is no longer paused", domain.ErrPrecondition)
		}

		s.recordTransition("complete")
		return s.campaigns.GetByID(ctx, orgID, campaign.ID)
	}

	ok, err := s.campaigns.Transition(ctx, orgID, campaign.ID,
		[]domain.CampaignStatus{domain.CampaignStatusPaused},
		domain.CampaignStatusSending,
		repository.TransitionChanges{SetPausedAt: true, PausedAt: nil},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resume campaign: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: campaign is no longer paused", domain.ErrPrecondition)
	}

	s.recordTransition("resume")
	s.publishDispatch(ctx, orgID, campaign.ID)

	return s.campaigns.GetByID(ctx, orgID, campaign.ID)
}

// Cancel terminally stops a campaign from any non-terminal state. The
// status CAS happens first so exactly one caller wins; remaining PENDING
// recipients are then bulk-moved to SKIPPED.
func (s *CampaignService) Cancel(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	campaign, err := s.campaigns.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: campaign is already %s", domain.ErrPrecondition, campaign.Status)
	}

	completedAt := s.now().UTC()
	ok, err := s.campaigns.Transition(ctx, orgID, campaign.ID,
		[]domain.CampaignStatus{
			domain.CampaignStatusDraft,
			domain.CampaignStatusScheduled,
			domain.CampaignStatusSending,
			domain.CampaignStatusPaused,
		},
		domain.CampaignStatusCancelled,
		repository.TransitionChanges{CompletedAt: &completedAt},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel campaign: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: campaign already reached a terminal state", domain.ErrPrecondition)
	}

	skipped, err := s.recipients.SkipPending(ctx, campaign.ID)
	if err != nil {
		// Status already flipped; pending rows can be re-skipped by a
		// later read of recipient counts.
		s.logger.Error("failed to skip pending recipients after cancel",
			zap.String("campaignId", campaign.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to skip pending recipients: %w", err)
	}

	s.recordTransition("cancel")
	s.logger.Info("campaign cancelled",
		zap.String("campaignId", campaign.ID),
		zap.Int64("skippedRecipients", skipped),
	)

	return s.campaigns.GetByID(ctx, orgID, campaign.ID)
}

// generateRecipients resolves criteria and freezes the recipient snapshot.
// Returns the number of recipients or a precondition error when nobody is
// eligible.
func (s *CampaignService) generateRecipients(ctx context.Context, campaign *domain.Campaign) (int, error) {
	members, err := s.members.FindEligible(ctx, campaign.OrgID, campaign.TargetCriteria)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve targeting criteria: %w", err)
	}

	recipients := make([]*domain.Recipient, 0, len(members))
	now := s.now().UTC()
	for _, member := range members {
		if !member.HasValidEmail() {
			continue
		}
		memberID := member.ID
		recipients = append(recipients, &domain.Recipient{
			ID:         uuid.NewString(),
			CampaignID: campaign.ID,
			MemberID:   &memberID,
			Email:      strings.TrimSpace(*member.Email),
			Name:       member.FullName(),
			Status:     domain.RecipientStatusPending,
			CreatedAt:  now,
		})
	}

	if len(recipients) == 0 {
		return 0, fmt.Errorf("%w: no eligible recipients match the campaign criteria", domain.ErrPrecondition)
	}

	if err := s.recipients.CreateBatch(ctx, recipients); err != nil {
		return 0, fmt.Errorf("failed to create campaign recipients: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AddRecipientsGenerated(len(recipients))
	}

	return len(recipients), nil
}

// publishDispatch hands the campaign to the delivery worker. Publish
// failures do not roll the transition back: the campaign stays SENDING and
// a pause/resume cycle re-publishes the job.
func (s *CampaignService) publishDispatch(ctx context.Context, orgID, campaignID string) {
	if s.publisher == nil {
		return
	}

	job := queue.CampaignJob{
		CampaignID: campaignID,
		OrgID:      orgID,
	}
	if correlationID, ok := observability.CorrelationIDFromContext(ctx); ok {
		job.CorrelationID = correlationID
	}

	if err := s.publisher.Publish(ctx, queue.DispatchQueueName, job); err != nil {
		s.logger.Warn("failed to publish campaign dispatch job",
			zap.String("campaignId", campaignID),
			zap.Error(err),
		)
	}
}

func (s *CampaignService) recordTransition(transition string) {
	if s.metrics != nil {
		s.metrics.IncCampaignTransition(transition)
	}
}
