package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Worker struct {
	ID         int
	WorkerPool chan chan Message
	JobChannel chan Message
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Message, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Message),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Message)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case msg := <-w.JobChannel:
				w.Logger.Debug("worker sending email", "worker_id", w.ID, "kind", msg.Kind)
				processFunc(msg)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	MaxWorkers   int
	JobQueueSize int
	SendTimeout  time.Duration
}

// Dispatcher delivers mail off the request path through a bounded queue.
type Dispatcher struct {
	mailer      Mailer
	logger      *slog.Logger
	sendTimeout time.Duration

	jobQueue   chan Message
	workerPool chan chan Message
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func NewDispatcher(mailer Mailer, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 2
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}
	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		mailer:      mailer,
		logger:      logger,
		sendTimeout: sendTimeout,
		maxWorkers:  maxWorkers,
		jobQueue:    make(chan Message, jobQueueSize),
		workerPool:  make(chan chan Message, maxWorkers),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	for i := 0; i < d.maxWorkers; i++ {
		worker := NewWorker(i, d.workerPool, d.logger)
		worker.Start(d.ctx, &d.wg, d.send)
	}
	go d.dispatch()

	d.logger.Info("email dispatcher started",
		"max_workers", d.maxWorkers,
		"queue_size", cap(d.jobQueue))

	return d
}

// dispatch hands queued messages to idle workers until the queue is closed and empty.
func (d *Dispatcher) dispatch() {
	defer close(d.done)

	for msg := range d.jobQueue {
		select {
		case jobChannel := <-d.workerPool:
			select {
			case jobChannel <- msg:
			case <-d.ctx.Done():
				d.logger.Info("dispatcher shutting down")
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (d *Dispatcher) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logger.Error("failed to send email",
			"error", err,
			"kind", msg.Kind,
			"to", msg.To)
	}
}

// Enqueue never blocks: a full or closed queue drops the message with a warning.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("email dropped, dispatcher is shut down", "kind", msg.Kind, "to", msg.To)
		return false
	}

	select {
	case d.jobQueue <- msg:
		d.logger.Debug("email queued", "kind", msg.Kind, "queue_length", len(d.jobQueue))
		return true
	default:
		d.logger.Warn("email queue full, dropping message",
			"kind", msg.Kind,
			"to", msg.To,
			"queue_capacity", cap(d.jobQueue))
		return false
	}
}

// Shutdown stops accepting messages, delivers what is already queued and waits for the
// workers, giving up when ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.once.Do(func() {
		d.logger.Info("shutting down email dispatcher", "pending", len(d.jobQueue))
		d.mu.Lock()
		d.closed = true
		close(d.jobQueue)
		d.mu.Unlock()
	})

	select {
	case <-d.done:
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}

	d.cancel()

	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		d.logger.Info("email dispatcher shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
