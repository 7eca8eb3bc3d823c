package processor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"apartinvest/server/config"
	"apartinvest/server/internal/models"
	"apartinvest/server/internal/queue"
)

// MockSender is a mock implementation of Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) NotifyLead(ctx context.Context, lead *models.Lead, project *models.Property) error {
	args := m.Called(lead, project)
	return args.Error(0)
}

func testConfig(retries int) *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 1
	cfg.BatchProcessing.MaxRetries = retries
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewNotifier(t *testing.T) {
	sender := &MockSender{}
	q := queue.NewLeadQueue(10, testLogger())
	cfg := testConfig(3)
	logger := testLogger()

	n := NewNotifier(sender, nil, q, cfg, logger)

	assert.NotNil(t, n)
	assert.Equal(t, sender, n.sender)
	assert.Equal(t, q, n.queue)
	assert.Equal(t, cfg, n.config)
	assert.Equal(t, logger, n.logger)
}

func TestNotifier_ProcessLead(t *testing.T) {
	project := &models.Property{Slug: "park-siti", Title: "Park Siti"}
	lookup := func(_ context.Context, slug string) *models.Property {
		if slug == project.Slug {
			return project
		}
		return nil
	}
	lead := &models.Lead{ID: "1", Name: "Анна", ProjectSlug: "park-siti"}

	// Test successful processing
	sender := &MockSender{}
	sender.On("NotifyLead", lead, project).Return(nil).Once()
	n := NewNotifier(sender, lookup, queue.NewLeadQueue(1, testLogger()), testConfig(3), testLogger())
	require.NoError(t, n.processLead(lead))
	sender.AssertExpectations(t)

	// Test retry on failure
	failing := &MockSender{}
	failing.On("NotifyLead", lead, project).Return(errors.New("telegram down")).Times(4)
	n = NewNotifier(failing, lookup, queue.NewLeadQueue(1, testLogger()), testConfig(3), testLogger())
	err := n.processLead(lead)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to notify lead after 4 attempts")
	failing.AssertExpectations(t)
}

func TestNotifier_RecoversAfterTransientFailure(t *testing.T) {
	lead := &models.Lead{ID: "2", Name: "Олег"}
	sender := &MockSender{}
	sender.On("NotifyLead", lead, (*models.Property)(nil)).Return(errors.New("timeout")).Once()
	sender.On("NotifyLead", lead, (*models.Property)(nil)).Return(nil).Once()

	n := NewNotifier(sender, nil, queue.NewLeadQueue(1, testLogger()), testConfig(2), testLogger())
	require.NoError(t, n.processLead(lead))
	sender.AssertNumberOfCalls(t, "NotifyLead", 2)
}

func TestNotifier_StartStop(t *testing.T) {
	lead := &models.Lead{ID: "3", Name: "Ирина"}
	done := make(chan struct{})

	sender := &MockSender{}
	sender.On("NotifyLead", lead, (*models.Property)(nil)).Return(nil).Run(func(mock.Arguments) {
		close(done)
	}).Once()

	q := queue.NewLeadQueue(10, testLogger())
	n := NewNotifier(sender, nil, q, testConfig(0), testLogger())
	n.Start()

	require.NoError(t, q.Push(lead))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lead was not processed")
	}

	n.Stop()
	assert.True(t, q.IsClosed())
	sender.AssertExpectations(t)
}

func TestNotifier_StopCancelsRetries(t *testing.T) {
	lead := &models.Lead{ID: "4", Name: "Пётр"}
	sender := &MockSender{}
	sender.On("NotifyLead", lead, (*models.Property)(nil)).Return(errors.New("down"))

	cfg := testConfig(5)
	cfg.BatchProcessing.RetryDelay = 60
	n := NewNotifier(sender, nil, queue.NewLeadQueue(1, testLogger()), cfg, testLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- n.processLead(lead) }()

	time.Sleep(50 * time.Millisecond)
	n.cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop did not stop")
	}
	sender.AssertNumberOfCalls(t, "NotifyLead", 1)
}
