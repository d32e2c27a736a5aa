package worker

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vhubert/fleetctl/internal/log"
)

// TaskHandler is the function executed by a scheduled task.
type TaskHandler func(ctx context.Context) error

// Task tracks one registered background task.
type Task struct {
	Name     string
	Schedule string
	Status   string // "pending", "running", "completed", "failed"
	LastRun  *time.Time
	LastErr  error
}

// Scheduler runs background refresh tasks on cron schedules. One
// instance serves one process; tasks never overlap with themselves.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	tasks   map[string]*Task
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a stopped scheduler.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterTask adds a task under a cron schedule expression (e.g.
// "@every 1h" or "0 */6 * * *"). The handler also runs once
// immediately in the background so callers have data before the first
// scheduled tick.
func (s *Scheduler) RegisterTask(name, schedule string, handler TaskHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &Task{Name: name, Schedule: schedule, Status: "pending"}
	if _, err := s.cron.AddFunc(schedule, func() { s.runTask(task, handler) }); err != nil {
		return err
	}
	s.tasks[name] = task
	log.Info("Task registered", "task", name, "schedule", schedule)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runTask(task, handler)
	}()
	return nil
}

// Start starts the cron loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	log.Info("Starting background scheduler")
	s.cron.Start()
}

// Stop stops the cron loop and cancels any in-flight task, waiting
// for started cron jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Info("Stopping background scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// TaskStatus reports the tracked state of a named task.
func (s *Scheduler) TaskStatus(name string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

func (s *Scheduler) runTask(task *Task, handler TaskHandler) {
	s.mu.Lock()
	if task.Status == "running" {
		s.mu.Unlock()
		return
	}
	task.Status = "running"
	now := time.Now()
	task.LastRun = &now
	s.mu.Unlock()

	log.Info("Running task", "task", task.Name)
	err := handler(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	task.LastErr = err
	if err != nil {
		task.Status = "failed"
		log.Error("Task failed", "task", task.Name, "error", err)
		return
	}
	task.Status = "completed"
	log.Info("Task completed", "task", task.Name)
}
