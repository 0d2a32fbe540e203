// Package scheduler drives recurring report runs: daily and weekly reports
// at configured times, plus bounded release monitoring windows that start
// intensive and relax over time.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

const (
	// runTimeout bounds one report run end to end, including Sentry
	// pagination and the summarization call.
	runTimeout = 10 * time.Minute

	// relaxedMultiplier stretches the monitor interval once the intensive
	// phase after a release ends.
	relaxedMultiplier = 4
)

// Runner executes one report run. *report.Generator satisfies this.
type Runner interface {
	Run(ctx context.Context, category, release string) (*entities.Report, error)
}

// Config holds the schedule. Zero-value fields disable nothing here;
// validation happens at config load.
type Config struct {
	DailyHour        int
	WeeklyWeekday    time.Weekday
	WeeklyHour       int
	MonitorInterval  time.Duration
	MonitorIntensive time.Duration
	MonitorTotal     time.Duration
}

// monitorState tracks one active release monitor.
type monitorState struct {
	release   string
	startedAt time.Time
	stop      chan struct{}
}

// MonitorStatus is the externally visible state of one release monitor.
type MonitorStatus struct {
	Release   string    `json:"release"`
	StartedAt time.Time `json:"started_at"`
	Phase     string    `json:"phase"` // intensive or relaxed
	EndsAt    time.Time `json:"ends_at"`
}

// Scheduler owns the recurring-run goroutines. Start launches the daily
// and weekly loops; release monitors come and go via StartMonitor and
// StopMonitor. All goroutines exit on Stop.
type Scheduler struct {
	runner Runner
	cfg    Config
	log    *zap.Logger

	mu       sync.Mutex
	stop     chan struct{}
	monitors map[string]*monitorState
	wg       sync.WaitGroup

	// now is swapped in tests.
	now func() time.Time
}

// New creates a stopped scheduler.
func New(runner Runner, cfg Config, log *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		cfg:      cfg,
		log:      log,
		monitors: make(map[string]*monitorState),
		now:      time.Now,
	}
}

// Start launches the daily and weekly report loops. Calling Start on a
// running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})

	s.wg.Add(2)
	go s.timeOfDayLoop(alerting.CategoryDaily, s.stop, func(now time.Time) time.Time {
		return nextDailyRun(now, s.cfg.DailyHour)
	})
	go s.timeOfDayLoop(alerting.CategoryWeekly, s.stop, func(now time.Time) time.Time {
		return nextWeeklyRun(now, s.cfg.WeeklyWeekday, s.cfg.WeeklyHour)
	})
	s.log.Info("scheduler started",
		zap.Int("daily_hour", s.cfg.DailyHour),
		zap.Stringer("weekly_weekday", s.cfg.WeeklyWeekday),
		zap.Int("weekly_hour", s.cfg.WeeklyHour))
}

// Stop shuts down every loop and active monitor and waits for them.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return
	}
	close(s.stop)
	s.stop = nil
	for _, m := range s.monitors {
		close(m.stop)
	}
	s.monitors = make(map[string]*monitorState)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// StartMonitor begins a bounded monitoring window for a release. It errors
// when the release is already monitored or the scheduler is stopped.
func (s *Scheduler) StartMonitor(release string) error {
	if release == "" {
		return fmt.Errorf("release is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return fmt.Errorf("scheduler is not running")
	}
	if _, exists := s.monitors[release]; exists {
		return fmt.Errorf("release %s is already monitored", release)
	}

	m := &monitorState{
		release:   release,
		startedAt: s.now(),
		stop:      make(chan struct{}),
	}
	s.monitors[release] = m
	s.wg.Add(1)
	go s.monitorLoop(m)
	s.log.Info("release monitor started",
		zap.String("release", release),
		zap.Duration("total_window", s.cfg.MonitorTotal))
	return nil
}

// StopMonitor ends a release monitor early. It reports whether one existed.
func (s *Scheduler) StopMonitor(release string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.monitors[release]
	if !ok {
		return false
	}
	close(m.stop)
	delete(s.monitors, release)
	return true
}

// ActiveMonitors lists monitors currently running.
func (s *Scheduler) ActiveMonitors() []MonitorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MonitorStatus, 0, len(s.monitors))
	for _, m := range s.monitors {
		phase := "relaxed"
		if s.now().Sub(m.startedAt) < s.cfg.MonitorIntensive {
			phase = "intensive"
		}
		out = append(out, MonitorStatus{
			Release:   m.release,
			StartedAt: m.startedAt,
			Phase:     phase,
			EndsAt:    m.startedAt.Add(s.cfg.MonitorTotal),
		})
	}
	return out
}

// timeOfDayLoop fires a category run at each scheduled time until stopped.
func (s *Scheduler) timeOfDayLoop(category string, stop <-chan struct{}, next func(time.Time) time.Time) {
	defer s.wg.Done()
	for {
		timer := time.NewTimer(time.Until(next(s.now())))
		select {
		case <-timer.C:
			s.runOnce(category, "")
		case <-stop:
			timer.Stop()
			return
		}
	}
}

// monitorLoop runs version-monitor reports for one release, intensively
// right after the release and relaxed afterwards, until the total window
// elapses or the monitor is stopped.
func (s *Scheduler) monitorLoop(m *monitorState) {
	defer s.wg.Done()
	deadline := m.startedAt.Add(s.cfg.MonitorTotal)

	for {
		interval := s.cfg.MonitorInterval
		if s.now().Sub(m.startedAt) >= s.cfg.MonitorIntensive {
			interval *= relaxedMultiplier
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			if s.now().After(deadline) {
				s.mu.Lock()
				if s.monitors[m.release] == m {
					delete(s.monitors, m.release)
				}
				s.mu.Unlock()
				s.log.Info("release monitor window finished",
					zap.String("release", m.release))
				return
			}
			s.runOnce(alerting.CategoryVersionMonitor, m.release)
		case <-m.stop:
			timer.Stop()
			return
		}
	}
}

// runOnce executes one report run with a bounded context and logs the
// outcome; scheduler loops never die on run errors.
func (s *Scheduler) runOnce(category, release string) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	rpt, err := s.runner.Run(ctx, category, release)
	if err != nil {
		s.log.Error("scheduled report run failed",
			zap.String("category", category),
			zap.String("release", release),
			zap.Error(err))
		return
	}
	s.log.Info("scheduled report run finished",
		zap.String("category", category),
		zap.String("report_id", rpt.ReportID),
		zap.String("severity", rpt.Severity))
}

// nextDailyRun returns the next occurrence of hour after now.
func nextDailyRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextWeeklyRun returns the next occurrence of weekday at hour after now.
func nextWeeklyRun(now time.Time, weekday time.Weekday, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
