package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"apartinvest/server/internal/logging"
	"apartinvest/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// LeadQueue represents an in-memory queue of leads waiting for operator notification
type LeadQueue struct {
	items    chan *models.Lead
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	handlers []func(*models.Lead) error
}

// NewLeadQueue creates a new lead queue with the specified buffer size
func NewLeadQueue(bufferSize int, logger *logrus.Logger) *LeadQueue {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &LeadQueue{
		items:    make(chan *models.Lead, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logging.OrDefault(logger),
		handlers: make([]func(*models.Lead) error, 0),
	}
}

// Push adds a lead to the queue without blocking
func (q *LeadQueue) Push(lead *models.Lead) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- lead:
		q.logger.WithField("lead_id", lead.ID).Debug("Pushed lead to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each lead
func (q *LeadQueue) Subscribe(handler func(*models.Lead) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items with the given number of workers
func (q *LeadQueue) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.process()
	}
}

// process handles the queue processing loop
func (q *LeadQueue) process() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case lead, ok := <-q.items:
			if !ok {
				return
			}
			q.dispatch(lead)
		}
	}
}

// dispatch sends the lead to all subscribed handlers
func (q *LeadQueue) dispatch(lead *models.Lead) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(lead); err != nil {
			q.logger.WithError(err).WithField("lead_id", lead.ID).Error("Handler failed to process lead")
		}
	}
}

// Close stops the queue and prevents new items from being added.
// Leads still buffered are dropped and logged.
func (q *LeadQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	for lead := range q.items {
		q.logger.WithField("lead_id", lead.ID).Warn("Dropping queued lead on shutdown")
	}
	return nil
}

// Len returns the current number of leads in the queue
func (q *LeadQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *LeadQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
