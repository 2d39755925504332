package nats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ducktyper-ai/quackverse-sub003/internal/infrastructure/resilience"
)

const (
	DefaultJobSubject   = "conversions.jobs"
	DefaultBatchSubject = "conversions.batches"

	workerQueueGroup = "workers"
)

type Queue struct {
	conn         *nats.Conn
	jobSubject   string
	batchSubject string
	executor     *resilience.Executor
}

func New(url string) (*Queue, error) {
	return NewWithOptions(url, Options{})
}

type Options struct {
	JobSubject           string
	BatchSubject         string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url string, options Options) (*Queue, error) {
	jobSubject := options.JobSubject
	if jobSubject == "" {
		jobSubject = DefaultJobSubject
	}
	batchSubject := options.BatchSubject
	if batchSubject == "" {
		batchSubject = DefaultBatchSubject
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("doc-converter"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:         conn,
		jobSubject:   jobSubject,
		batchSubject: batchSubject,
		executor:     options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishJobQueued(ctx context.Context, jobID string) error {
	return q.publish(ctx, q.jobSubject, jobID)
}

func (q *Queue) PublishBatchQueued(ctx context.Context, batchID string) error {
	return q.publish(ctx, q.batchSubject, batchID)
}

func (q *Queue) publish(ctx context.Context, subject, id string) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, []byte(id)); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// Subscribe consumes job and batch events until ctx is canceled, then drains
// both subscriptions so in-flight conversions finish before shutdown.
func (q *Queue) Subscribe(ctx context.Context, jobs func(context.Context, string) error, batches func(context.Context, string) error) error {
	jobSub, err := q.conn.QueueSubscribe(q.jobSubject, workerQueueGroup, q.handlerFor(ctx, "job", jobs))
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", q.jobSubject, err)
	}
	batchSub, err := q.conn.QueueSubscribe(q.batchSubject, workerQueueGroup, q.handlerFor(ctx, "batch", batches))
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", q.batchSubject, err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	for _, sub := range []*nats.Subscription{jobSub, batchSub} {
		if err := sub.Drain(); err != nil {
			return fmt.Errorf("nats drain subscription: %w", err)
		}
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (q *Queue) handlerFor(ctx context.Context, kind string, handler func(context.Context, string) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, string(msg.Data)); err != nil {
			log.Printf("worker handler error for %s=%s: %v", kind, string(msg.Data), err)
		}
	}
}
