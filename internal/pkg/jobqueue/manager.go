package jobqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/env"
)

// FailedEventSource lists ledger rows that are eligible for replay.
type FailedEventSource interface {
	ListFailed(ctx context.Context, limit, maxAttempts int) ([]models.WebhookEvent, error)
}

// ManagerConfig controls the replay sweep.
type ManagerConfig struct {
	ReplayInterval    time.Duration
	ReplayMaxAttempts int
	ReplayBatchSize   int
}

// LoadManagerConfig reads the replay settings from the environment.
func LoadManagerConfig() ManagerConfig {
	return ManagerConfig{
		ReplayInterval:    env.GetDuration("WEBHOOK_REPLAY_INTERVAL", 5*time.Minute),
		ReplayMaxAttempts: env.GetInt("WEBHOOK_REPLAY_MAX_ATTEMPTS", 5),
		ReplayBatchSize:   env.GetInt("WEBHOOK_REPLAY_BATCH_SIZE", 50),
	}
}

// Manager runs the job queue together with the failed-event replay sweep
type Manager struct {
	queue        *Queue
	source       FailedEventSource
	cfg          ManagerConfig
	replayTicker *time.Ticker
	stopCh       chan struct{}
	wg           sync.WaitGroup
	mu           sync.Mutex
	running      bool
}

// NewManager creates a manager for the given queue and ledger.
func NewManager(queue *Queue, source FailedEventSource, cfg ManagerConfig) *Manager {
	if cfg.ReplayInterval <= 0 {
		cfg.ReplayInterval = 5 * time.Minute
	}
	if cfg.ReplayMaxAttempts <= 0 {
		cfg.ReplayMaxAttempts = 5
	}
	if cfg.ReplayBatchSize <= 0 {
		cfg.ReplayBatchSize = 50
	}
	return &Manager{
		queue:  queue,
		source: source,
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// fresh channel per start cycle so the manager can be restarted
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and replay sweep")

	m.queue.Start()

	m.replayTicker = time.NewTicker(m.cfg.ReplayInterval)
	m.wg.Add(1)
	go m.replayWorker(m.stopCh, m.replayTicker.C)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.replayTicker != nil {
		m.replayTicker.Stop()
	}

	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	m.wg.Wait()

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// replayWorker periodically enqueues replays for failed ledger events. The
// channels are handed over by Start so Stop never races the first read.
func (m *Manager) replayWorker(stopCh <-chan struct{}, tick <-chan time.Time) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started replay worker (interval: %s, max attempts: %d)", m.cfg.ReplayInterval, m.cfg.ReplayMaxAttempts)

	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Replay worker stopping")
			return
		case <-tick:
			if _, err := m.SweepFailedEvents(context.Background()); err != nil {
				log.Errorf("[JobQueue Manager] Replay sweep error: %v", err)
			}
		}
	}
}

// SweepFailedEvents enqueues one replay job per replayable failed event and
// returns how many were queued. Events with a replay already queued are skipped.
func (m *Manager) SweepFailedEvents(ctx context.Context) (int, error) {
	events, err := m.source.ListFailed(ctx, m.cfg.ReplayBatchSize, m.cfg.ReplayMaxAttempts)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, ev := range events {
		if _, err := m.queue.EnqueueReplay(ctx, ev.EventID, ReplaySourceSweeper); err != nil {
			if errors.Is(err, ErrReplayPending) {
				continue
			}
			log.Errorf("[JobQueue Manager] Could not enqueue replay of %s: %v", ev.EventID, err)
			continue
		}
		queued++
	}
	if queued > 0 {
		log.Infof("[JobQueue Manager] Queued %d replay jobs", queued)
	}
	return queued, nil
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
