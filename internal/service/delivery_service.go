package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unionhall/outreach-engine/internal/domain"
	"github.com/unionhall/outreach-engine/internal/observability"
	"github.com/unionhall/outreach-engine/internal/provider"
	"github.com/unionhall/outreach-engine/internal/queue"
	"github.com/unionhall/outreach-engine/internal/ratelimit"
	"github.com/unionhall/outreach-engine/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minWorkerConcurrency = 1
	defaultClaimBatch    = 50
)

// DeliveryService is the send-execution worker. It consumes campaign
// dispatch jobs and drains PENDING recipients batch by batch, re-reading
// campaign status between batches so pause and cancel take effect
// mid-flight. Recipient rows flip PENDING to SENT/FAILED with a conditional
// update, so a redelivered job never double-counts a recipient.
type DeliveryService struct {
	campaigns   repository.CampaignRepository
	recipients  repository.RecipientRepository
	consumer    queue.Consumer
	sender      provider.Sender
	rateLimiter ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
	batchSize   int
	now         func() time.Time
}

func NewDeliveryService(
	campaigns repository.CampaignRepository,
	recipients repository.RecipientRepository,
	consumer queue.Consumer,
	sender provider.Sender,
	rateLimiter ratelimit.RateLimiter,
	concurrency int,
	logger *zap.Logger,
) (*DeliveryService, error) {
	if campaigns == nil || recipients == nil {
		return nil, fmt.Errorf("campaign and recipient repositories are required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DeliveryService{
		campaigns:   campaigns,
		recipients:  recipients,
		consumer:    consumer,
		sender:      sender,
		rateLimiter: rateLimiter,
		logger:      logger,
		concurrency: concurrency,
		batchSize:   defaultClaimBatch,
		now:         time.Now,
	}, nil
}

// SetMetrics attaches prometheus collectors; safe to skip in tests.
func (s *DeliveryService) SetMetrics(m *observability.Metrics) {
	s.metrics = m
}

// Start consumes the dispatch queue until context cancellation.
func (s *DeliveryService) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.consumer == nil {
		return fmt.Errorf("queue consumer is required")
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			s.logger.Info("delivery worker started",
				zap.Int("workerId", workerID),
				zap.String("queue", queue.DispatchQueueName),
			)

			err := s.consumer.Consume(groupCtx, queue.DispatchQueueName, s.ProcessJob)
			if err != nil {
				s.logger.Error("delivery worker stopped with error",
					zap.Int("workerId", workerID),
					zap.Error(err),
				)
				return err
			}

			s.logger.Info("delivery worker stopped", zap.Int("workerId", workerID))
			return nil
		})
	}

	return g.Wait()
}

// ProcessJob drains one campaign. Returning nil acks the job; an error
// nacks it back onto the queue.
func (s *DeliveryService) ProcessJob(ctx context.Context, job queue.CampaignJob) error {
	logger := s.logger.With(
		zap.String("campaignId", job.CampaignID),
		zap.String("orgId", job.OrgID),
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		campaign, err := s.campaigns.GetByID(ctx, job.OrgID, job.CampaignID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("campaign not found while processing job, skipping")
				return nil
			}
			return fmt.Errorf("failed to load campaign: %w", err)
		}

		if campaign.Status != domain.CampaignStatusSending {
			logger.Info("campaign no longer sending, stopping delivery",
				zap.String("status", campaign.Status.String()),
			)
			return nil
		}

		batch, err := s.recipients.ListPending(ctx, campaign.ID, s.batchSize)
		if err != nil {
			return fmt.Errorf("failed to list pending recipients: %w", err)
		}

		if len(batch) == 0 {
			return s.finalize(ctx, campaign, logger)
		}

		for i := range batch {
			if err := s.deliverOne(ctx, campaign, &batch[i]); err != nil {
				return err
			}
		}
	}
}

// deliverOne sends to a single recipient and records the outcome. Send
// failures are terminal for the recipient row; only infrastructure errors
// (context, rate limiter, persistence) propagate and nack the job.
func (s *DeliveryService) deliverOne(ctx context.Context, campaign *domain.Campaign, recipient *domain.Recipient) error {
	if s.rateLimiter != nil {
		if err := s.rateLimiter.Wait(ctx, "org:"+campaign.OrgID); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	msg := buildMessage(campaign, recipient)

	sendStart := s.now()
	sendErr := s.sender.Send(ctx, msg)
	if s.metrics != nil {
		s.metrics.ObserveSendDuration(s.now().Sub(sendStart))
	}

	if sendErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		claimed, err := s.recipients.MarkFailed(ctx, recipient.ID, sendErr.Error())
		if err != nil {
			return fmt.Errorf("failed to mark recipient failed: %w", err)
		}
		if claimed {
			if err := s.campaigns.IncrementFailed(ctx, campaign.OrgID, campaign.ID); err != nil {
				return fmt.Errorf("failed to increment failed counter: %w", err)
			}
			if s.metrics != nil {
				s.metrics.IncEmailsFailed()
			}
			s.logger.Warn("recipient delivery failed",
				zap.String("campaignId", campaign.ID),
				zap.String("recipientId", recipient.ID),
				zap.Error(sendErr),
			)
		}
		return nil
	}

	claimed, err := s.recipients.MarkSent(ctx, recipient.ID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark recipient sent: %w", err)
	}
	if claimed {
		if err := s.campaigns.IncrementSent(ctx, campaign.OrgID, campaign.ID); err != nil {
			return fmt.Errorf("failed to increment sent counter: %w", err)
		}
		if s.metrics != nil {
			s.metrics.IncEmailsSent()
		}
	}

	return nil
}

func (s *DeliveryService) finalize(ctx context.Context, campaign *domain.Campaign, logger *zap.Logger) error {
	completedAt := s.now().UTC()
	ok, err := s.campaigns.Transition(ctx, campaign.OrgID, campaign.ID,
		[]domain.CampaignStatus{domain.CampaignStatusSending},
		domain.CampaignStatusCompleted,
		repository.TransitionChanges{CompletedAt: &completedAt},
	)
	if err != nil {
		return fmt.Errorf("failed to finalize campaign: %w", err)
	}
	if ok {
		logger.Info("campaign completed")
	}
	return nil
}

// buildMessage renders the campaign body for one recipient. Placeholders
// substitute against the snapshotted recipient name, never the live member
// record.
func buildMessage(campaign *domain.Campaign, recipient *domain.Recipient) provider.Message {
	return provider.Message{
		To:        recipient.Email,
		ToName:    recipient.Name,
		FromName:  campaign.FromName,
		FromEmail: campaign.FromEmail,
		Subject:   renderPlaceholders(campaign.Subject, recipient.Name),
		HTML:      renderPlaceholders(campaign.BodyHTML, recipient.Name),
		Text:      renderPlaceholders(campaign.BodyText, recipient.Name),
	}
}

// renderPlaceholders substitutes {name}, {first_name} and {last_name}
// against the snapshotted recipient name. A single-word name renders its
// {last_name} empty rather than duplicating the first name.
func renderPlaceholders(template, fullName string) string {
	if template == "" {
		return ""
	}

	firstName := fullName
	lastName := ""
	if idx := strings.IndexByte(fullName, ' '); idx > 0 {
		firstName = fullName[:idx]
		lastName = strings.TrimSpace(fullName[idx+1:])
	}

	rendered := strings.ReplaceAll(template, "{name}", fullName)
	rendered = strings.ReplaceAll(rendered, "{first_name}", firstName)
	rendered = strings.ReplaceAll(rendered, "{last_name}", lastName)
	return rendered
}
