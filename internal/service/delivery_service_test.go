package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/unionhall/outreach-engine/internal/domain"
	"github.com/unionhall/outreach-engine/internal/provider"
	"github.com/unionhall/outreach-engine/internal/queue"
)

func TestDeliveryServiceProcessJobDrainsCampaign(t *testing.T) {
	t.Parallel()

	campaigns := newFakeCampaignRepo()
	recipients := newFakeRecipientRepo()
	seedCampaign(campaigns, "c-1", "org-1", domain.CampaignStatusSending)
	recipients.seed(domain.Recipient{ID: "r-1", CampaignID: "c-1", Email: "ada@example.org", Name: "Ada Byron", Status: domain.RecipientStatusPending})
	recipients.seed(domain.Recipient{ID: "r-2", CampaignID: "c-1", Email: "karl@example.org", Name: "Karl Marx", Status: domain.RecipientStatusPending})

	sender := &fakeSender{}
	svc := newTestDeliveryService(t, campaigns, recipients, sender)

	err := svc.ProcessJob(context.Background(), queue.CampaignJob{CampaignID: "c-1", OrgID: "org-1"})
	if err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("sent messages = %d, want 2", len(sender.sent))
	}

	campaign, _ := campaigns.GetByID(context.Background(), "org-1", "c-1")
	if campaign.Status != domain.CampaignStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED after drain", campaign.Status)
	}
	if campaign.SentCount != 2 {
		t.Fatalf("sentCount = %d, want 2", campaign.SentCount)
	}
	if campaign.CompletedAt == nil {
		t.Fatal("completedAt should be set")
	}

	for _, row := range recipients.byCampaign("c-1") {
		if row.Status != domain.RecipientStatusSent {
			t.Fatalf("recipient %s status = %s, want SENT", row.ID, row.Status)
		}
		if row.SentAt == nil {
			t.Fatalf("recipient %s missing sentAt", row.ID)
		}
	}
}

func TestDeliveryServiceProcessJobRecordsFailures(t *testing.T) {
	t.Parallel()

	campaigns := newFakeCampaignRepo()
	recipients := newFakeRecipientRepo()
	seedCampaign(campaigns, "c-1", "org-1", domain.CampaignStatusSending)
	recipients.seed(domain.Recipient{ID: "r-1", CampaignID: "c-1", Email: "ada@example.org", Name: "Ada Byron", Status: domain.RecipientStatusPending})
	recipients.seed(domain.Recipient{ID: "r-2", CampaignID: "c-1", Email: "bounce@example.org", Name: "Bounce", Status: domain.RecipientStatusPending})

	sender := &fakeSender{
		sendFn: func(ctx context.Context, msg provider.Message) error {
			if msg.To == "bounce@example.org" {
				return errors.New("mailbox unavailable")
			}
			return nil
		},
	}
	svc := newTestDeliveryService(t, campaigns, recipients, sender)

	err := svc.ProcessJob(context.Background(), queue.CampaignJob{CampaignID: "c-1", OrgID: "org-1"})
	if err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	campaign, _ := campaigns.GetByID(context.Background(), "org-1", "c-1")
	if campaign.SentCount != 1 || campaign.FailedCount != 1 {
		t.Fatalf("counters = sent %d failed %d, want 1/1", campaign.SentCount, campaign.FailedCount)
	}
	if campaign.Status != domain.CampaignStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED (failures do not block completion)", campaign.Status)
	}

	var failed *domain.Recipient
	for _, row := range recipients.byCampaign("c-1") {
		if row.Status == domain.RecipientStatusFailed {
			r := row
			failed = &r
		}
	}
	if failed == nil {
		t.Fatal("expected one FAILED recipient row")
	}
	if failed.FailureReason == nil || *failed.FailureReason == "" {
		t.Fatal("failure reason should be recorded")
	}
}

func TestDeliveryServiceProcessJobStopsWhenCampaignLeavesSending(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.CampaignStatus{
		domain.CampaignStatusPaused,
		domain.CampaignStatusCancelled,
	} {
		campaigns := newFakeCampaignRepo()
		recipients := newFakeRecipientRepo()
		seedCampaign(campaigns, "c-1", "org-1", status)
		recipients.seed(domain.Recipient{ID: "r-1", CampaignID: "c-1", Email: "ada@example.org", Status: domain.RecipientStatusPending})

		sender := &fakeSender{}
		svc := newTestDeliveryService(t, campaigns, recipients, sender)

		err := svc.ProcessJob(context.Background(), queue.CampaignJob{CampaignID: "c-1", OrgID: "org-1"})
		if err != nil {
			t.Fatalf("ProcessJob() on %s error = %v, want nil ack", status, err)
		}
		if len(sender.sent) != 0 {
			t.Fatalf("sent messages = %d on %s campaign, want 0", len(sender.sent), status)
		}

		campaign, _ := campaigns.GetByID(context.Background(), "org-1", "c-1")
		if campaign.Status != status {
			t.Fatalf("status = %s, want unchanged %s", campaign.Status, status)
		}
	}
}

func TestDeliveryServiceProcessJobSkipsMissingCampaign(t *testing.T) {
	t.Parallel()

	svc := newTestDeliveryService(t, newFakeCampaignRepo(), newFakeRecipientRepo(), &fakeSender{})

	err := svc.ProcessJob(context.Background(), queue.CampaignJob{CampaignID: "c-missing", OrgID: "org-1"})
	if err != nil {
		t.Fatalf("ProcessJob() error = %v, want nil for missing campaign", err)
	}
}

func TestDeliveryServiceRedeliveryDoesNotDoubleCount(t *testing.T) {
	t.Parallel()

	campaigns := newFakeCampaignRepo()
	recipients := newFakeRecipientRepo()
	seedCampaign(campaigns, "c-1", "org-1", domain.CampaignStatusSending)
	// First delivery of r-1 already landed; a redelivered job sees the row
	// as PENDING only for r-2.
	sentAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	recipients.seed(domain.Recipient{ID: "r-1", CampaignID: "c-1", Email: "ada@example.org", Status: domain.RecipientStatusSent, SentAt: &sentAt})
	recipients.seed(domain.Recipient{ID: "r-2", CampaignID: "c-1", Email: "karl@example.org", Status: domain.RecipientStatusPending})

	sender := &fakeSender{}
	svc := newTestDeliveryService(t, campaigns, recipients, sender)

	err := svc.ProcessJob(context.Background(), queue.CampaignJob{CampaignID: "c-1", OrgID: "org-1"})
	if err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent messages = %d, want 1 (already-sent row skipped)", len(sender.sent))
	}
	campaign, _ := campaigns.GetByID(context.Background(), "org-1", "c-1")
	if campaign.SentCount != 1 {
		t.Fatalf("sentCount = %d, want 1", campaign.SentCount)
	}
}

func TestDeliveryServiceRateLimiterKeyedByOrg(t *testing.T) {
	t.Parallel()

	campaigns := newFakeCampaignRepo()
	recipients := newFakeRecipientRepo()
	seedCampaign(campaigns, "c-1", "org-1", domain.CampaignStatusSending)
	recipients.seed(domain.Recipient{ID: "r-1", CampaignID: "c-1", Email: "ada@example.org", Status: domain.RecipientStatusPending})

	limiter := &fakeRateLimiter{}
	svc := newTestDeliveryService(t, campaigns, recipients, &fakeSender{})
	svc.rateLimiter = limiter

	err := svc.ProcessJob(context.Background(), queue.CampaignJob{CampaignID: "c-1", OrgID: "org-1"})
	if err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	if len(limiter.waitKeys) != 1 || limiter.waitKeys[0] != "org:org-1" {
		t.Fatalf("wait keys = %v, want [org:org-1]", limiter.waitKeys)
	}
}

func TestRenderPlaceholders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		fullName string
		want     string
	}{
		{
			name:     "full name substitution",
			template: "Dear {name},",
			fullName: "Ada Byron",
			want:     "Dear Ada Byron,",
		},
		{
			name:     "first name substitution",
			template: "Hi {first_name}!",
			fullName: "Ada Byron",
			want:     "Hi Ada!",
		},
		{
			name:     "last name substitution",
			template: "Member {last_name}, {first_name}",
			fullName: "Ada Byron",
			want:     "Member Byron, Ada",
		},
		{
			name:     "all placeholders together",
			template: "{name} = {first_name} {last_name}",
			fullName: "Ada Byron",
			want:     "Ada Byron = Ada Byron",
		},
		{
			name:     "single word name",
			template: "Hi {first_name}",
			fullName: "Ada",
			want:     "Hi Ada",
		},
		{
			name:     "single word name leaves last name empty",
			template: "Hi {first_name} {last_name}",
			fullName: "Ada",
			want:     "Hi Ada ",
		},
		{
			name:     "no placeholders",
			template: "Solidarity forever",
			fullName: "Ada Byron",
			want:     "Solidarity forever",
		},
		{
			name:     "empty template",
			template: "",
			fullName: "Ada Byron",
			want:     "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := renderPlaceholders(tt.template, tt.fullName); got != tt.want {
				t.Fatalf("renderPlaceholders() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newTestDeliveryService(
	t *testing.T,
	campaigns *fakeCampaignRepo,
	recipients *fakeRecipientRepo,
	sender provider.Sender,
) *DeliveryService {
	t.Helper()

	svc, err := NewDeliveryService(campaigns, recipients, &fakeConsumer{}, sender, nil, 1, nil)
	if err != nil {
		t.Fatalf("NewDeliveryService() error = %v", err)
	}
	return svc
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []provider.Message
	sendFn func(ctx context.Context, msg provider.Message) error
}

func (s *fakeSender) Send(ctx context.Context, msg provider.Message) error {
	if s.sendFn != nil {
		if err := s.sendFn(ctx, msg); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

type fakeConsumer struct{}

func (c *fakeConsumer) Consume(ctx context.Context, queueName string, handler queue.JobHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (c *fakeConsumer) Close() error { return nil }

type fakeRateLimiter struct {
	mu       sync.Mutex
	waitKeys []string
}

func (l *fakeRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (l *fakeRateLimiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waitKeys = append(l.waitKeys, key)
	return nil
}
