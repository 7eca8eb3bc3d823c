package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"apartinvest/server/internal/logging"
)

// JobType represents the kinds of periodic jobs
type JobType int

const (
	JobTypeIngest JobType = iota
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypeIngest:
		return "ingest"
	default:
		return "unknown"
	}
}

// Job is one periodic unit of work
type Job struct {
	Type JobType
	Run  func(ctx context.Context) error
}

// Scheduler runs its jobs once at startup and then on every tick
type Scheduler struct {
	jobs         []Job
	interval     time.Duration
	logger       *logrus.Logger
	stopChan     chan struct{}
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	jobMutex     sync.Mutex  // Ensures sequential job execution
	isStartupRun atomic.Bool // Tracks whether we're in startup run
	stopOnce     sync.Once
}

// NewScheduler creates a new scheduler
func NewScheduler(interval time.Duration, logger *logrus.Logger, jobs ...Job) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		jobs:     jobs,
		interval: interval,
		logger:   logging.OrDefault(logger),
		stopChan: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.isStartupRun.Store(true)
	return s
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// Stop cancels running jobs and waits for the loop to exit
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.stopChan)
	})
	s.wg.Wait()
}

// runScheduler handles all scheduled tasks
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Run startup jobs in a separate goroutine
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.jobMutex.Lock()
		defer s.jobMutex.Unlock()
		s.logger.Info("Running startup jobs")
		s.runJobs()
		s.isStartupRun.Store(false) // Mark startup as complete
		s.logger.Info("Startup jobs completed")
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

// executeScheduledJobs runs all jobs for the given tick
func (s *Scheduler) executeScheduledJobs(t time.Time) {
	// Skip if we're still running startup jobs
	if s.isStartupRun.Load() {
		s.logger.Debug("Skipping scheduled jobs while startup is in progress")
		return
	}

	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithField("tick", t.UTC().Format(time.RFC3339)).Debug("Running scheduled jobs")
	s.runJobs()
}

// runJobs runs every job sequentially
func (s *Scheduler) runJobs() {
	for _, job := range s.jobs {
		if s.ctx.Err() != nil {
			return
		}
		fields := logrus.Fields{"job_type": job.Type.String()}
		s.logger.WithFields(fields).Info("Starting job")

		start := time.Now()
		if err := job.Run(s.ctx); err != nil {
			s.logger.WithError(err).WithFields(fields).Error("Job failed")
			continue
		}
		s.logger.WithFields(fields).WithField("duration", time.Since(start).String()).Info("Job completed successfully")
	}
}
