package notify

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channelPrefix = "portal:notifications:"

// DefaultQueueSize bounds the acknowledgments waiting to be published.
const DefaultQueueSize = 256

// RedisPublisher publishes acknowledgments on a per-session pub/sub channel
// so a websocket or SSE gateway can surface them as toasts.
//
// Notify only enqueues; a background goroutine does the PUBLISH. When the
// queue is full the event is dropped, so a slow or stalled broker never
// holds up the caller.
type RedisPublisher struct {
	client  *redis.Client
	timeout time.Duration
	logger  zerolog.Logger

	queue     chan Event
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

// NewRedisPublisher starts the publishing goroutine. Call Close to stop it.
// A queueSize of zero or less uses DefaultQueueSize.
func NewRedisPublisher(client *redis.Client, queueSize int, logger zerolog.Logger) *RedisPublisher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	p := &RedisPublisher{
		client:  client,
		timeout: 2 * time.Second,
		logger:  logger,
		queue:   make(chan Event, queueSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Channel returns the pub/sub channel for a session. Events without a
// session id go to the shared "all" channel.
func Channel(sessionID string) string {
	if sessionID == "" {
		return channelPrefix + "all"
	}
	return channelPrefix + sessionID
}

func (p *RedisPublisher) Notify(_ context.Context, ev Event) {
	select {
	case <-p.stop:
		return
	default:
	}

	select {
	case p.queue <- ev:
	default:
		p.dropped.Add(1)
		p.logger.Warn().
			Str("kind", string(ev.Kind)).
			Str("appointment_id", ev.AppointmentID).
			Msg("notification queue full, dropping")
	}
}

// Dropped reports how many events were discarded on a full queue.
func (p *RedisPublisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops accepting events and waits for the queued ones to be
// published, or for ctx to expire.
func (p *RedisPublisher) Close(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.stop) })

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *RedisPublisher) run() {
	defer close(p.done)

	for {
		select {
		case ev := <-p.queue:
			p.publish(ev)
		case <-p.stop:
			for {
				select {
				case ev := <-p.queue:
					p.publish(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *RedisPublisher) publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error().Err(err).Str("kind", string(ev.Kind)).Msg("marshal notification")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.Publish(ctx, Channel(ev.SessionID), data).Err(); err != nil {
		p.logger.Warn().
			Err(err).
			Str("kind", string(ev.Kind)).
			Str("appointment_id", ev.AppointmentID).
			Msg("publish notification")
	}
}
