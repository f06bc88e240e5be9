package queue

import "context"

// Publisher publishes campaign dispatch jobs to the broker.
type Publisher interface {
	Publish(ctx context.Context, queue string, job CampaignJob) error
	Close() error
}

// JobHandler handles a consumed dispatch job.
type JobHandler func(ctx context.Context, job CampaignJob) error

// Consumer consumes campaign dispatch jobs from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler JobHandler) error
	Close() error
}

const (
	// DispatchQueueName is the work queue the delivery worker consumes.
	DispatchQueueName = "campaign.dispatch"

	// DispatchDLQName receives rejected dispatch jobs.
	DispatchDLQName = "dlq.campaign.dispatch"
)
