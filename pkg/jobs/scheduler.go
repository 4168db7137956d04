package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

// SchedulerConfig configures retry behaviour and the clock location of cron specs.
type SchedulerConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	Location   *time.Location
	Logger     *zap.Logger
}

// Scheduler runs named tasks on cron specs. A run that is still in progress
// when its next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron       *cron.Cron
	parser     cron.Parser
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	entries map[string]cron.EntryID
	started bool
}

// NewScheduler builds a scheduler accepting standard five-field specs and descriptors like "@hourly".
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cronLogger := zapCronLogger{logger: cfg.Logger.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		parser:     parser,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		ctx:        ctx,
		cancel:     cancel,
		entries:    make(map[string]cron.EntryID),
	}
}

// Register schedules task under name. Names must be unique.
func (s *Scheduler) Register(name, spec string, task Task) error {
	schedule, err := s.parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("parse schedule %q for job %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}
	s.entries[name] = s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.run(name, task)
	}))
	s.logger.Sugar().Infow("job registered", "job", name, "spec", spec)
	return nil
}

// Next reports the next activation of the named job; zero when unknown or not started.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start begins dispatching. Safe to call once.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "jobs", len(s.entries))
}

// Stop cancels in-flight runs and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.logger.Sugar().Infow("scheduler stopped")
}

func (s *Scheduler) run(name string, task Task) {
	for attempt := 0; ; attempt++ {
		started := time.Now()
		err := task(s.ctx)
		if err == nil {
			s.logger.Sugar().Infow("job completed", "job", name, "attempt", attempt+1, "duration", time.Since(started))
			return
		}
		if attempt >= s.maxRetries || s.ctx.Err() != nil {
			s.logger.Sugar().Errorw("job failed", "job", name, "attempt", attempt+1, "error", err)
			return
		}
		s.logger.Sugar().Warnw("job failed, retrying", "job", name, "attempt", attempt+1, "error", err)

		timer := time.NewTimer(s.retryDelay)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
