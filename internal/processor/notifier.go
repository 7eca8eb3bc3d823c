package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"apartinvest/server/config"
	"apartinvest/server/internal/logging"
	"apartinvest/server/internal/models"
	"apartinvest/server/internal/observability"
	"apartinvest/server/internal/queue"
)

// Sender delivers a lead notification to the operator.
type Sender interface {
	NotifyLead(ctx context.Context, lead *models.Lead, project *models.Property) error
}

// ProjectLookup resolves the project a lead refers to. It returns nil when unknown.
type ProjectLookup func(ctx context.Context, slug string) *models.Property

// Notifier consumes the lead queue and notifies the operator with retries
type Notifier struct {
	sender    Sender
	lookup    ProjectLookup
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.LeadQueue
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	timeout   time.Duration
}

// NewNotifier creates a new notifier instance
func NewNotifier(sender Sender, lookup ProjectLookup, q *queue.LeadQueue, cfg *config.Config, logger *logrus.Logger) *Notifier {
	ctx, cancel := context.WithCancel(context.Background())
	return &Notifier{
		sender:  sender,
		lookup:  lookup,
		queue:   q,
		config:  cfg,
		logger:  logging.OrDefault(logger),
		ctx:     ctx,
		cancel:  cancel,
		timeout: 15 * time.Second,
	}
}

// Start subscribes to the queue and starts its workers
func (n *Notifier) Start() {
	n.queue.Subscribe(n.processLead)
	n.queue.Start(n.config.BatchProcessing.ProcessorCount)
}

// Stop cancels pending retries and closes the queue
func (n *Notifier) Stop() {
	n.cancel()
	n.queue.Close()
	n.waitGroup.Wait()
}

// processLead sends one notification, retrying up to MaxRetries times
func (n *Notifier) processLead(lead *models.Lead) error {
	n.waitGroup.Add(1)
	defer n.waitGroup.Done()

	var project *models.Property
	if n.lookup != nil && lead.ProjectSlug != "" {
		project = n.lookup(n.ctx, lead.ProjectSlug)
	}

	maxRetries := n.config.BatchProcessing.MaxRetries
	delay := time.Duration(n.config.BatchProcessing.RetryDelay) * time.Second

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			n.logger.Infof("Retrying lead notification, attempt %d of %d", attempt, maxRetries)
			select {
			case <-n.ctx.Done():
				observability.ObserveNotification("dropped")
				return fmt.Errorf("notification of lead %s cancelled: %w", lead.ID, n.ctx.Err())
			case <-time.After(delay):
			}
		}

		ctx, cancel := context.WithTimeout(n.ctx, n.timeout)
		err = n.sender.NotifyLead(ctx, lead, project)
		cancel()

		if err == nil {
			observability.ObserveNotification("sent")
			n.logger.WithField("lead_id", lead.ID).Info("Lead notification sent")
			return nil
		}

		n.logger.WithError(err).WithField("lead_id", lead.ID).Warn("Lead notification failed")
	}

	observability.ObserveNotification("failed")
	return fmt.Errorf("failed to notify lead after %d attempts: %w", maxRetries+1, err)
}
