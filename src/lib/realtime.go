package lib

import (
	"context"
	"encoding/json"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Change announces a committed mutation. Subscribers refetch; the message
// never carries row data.
type Change struct {
	Entity  string     `json:"entity"`
	Op      string     `json:"op"`
	ID      uuid.UUID  `json:"id"`
	HotelID *uuid.UUID `json:"hotel_id,omitempty"`
	UserID  *uuid.UUID `json:"user_id,omitempty"`
}

type Feed interface {
	Publish(ctx context.Context, channel string, c Change) error
	// Subscribe delivers changes until ctx is done or the returned func is called.
	// RedisFeed holds back until the reader catches up; LocalFeed never blocks
	// a publisher and drops changes for a reader more than 64 behind.
	Subscribe(ctx context.Context, channels ...string) (<-chan Change, func())
}

// RedisFeed fans changes out across API instances with redis pub/sub.
type RedisFeed struct {
	rdb *redis.Client
}

func NewRedisFeed(rdb *redis.Client) *RedisFeed {
	return &RedisFeed{rdb: rdb}
}

func (f *RedisFeed) Publish(ctx context.Context, channel string, c Change) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, channel, b).Err()
}

func (f *RedisFeed) Subscribe(ctx context.Context, channels ...string) (<-chan Change, func()) {
	ctx, cancel := context.WithCancel(ctx)
	ps := f.rdb.Subscribe(ctx, channels...)
	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var c Change
				if err := json.Unmarshal([]byte(m.Payload), &c); err != nil {
					log.Printf("[realtime] Error decoding change on %s: %s\n", m.Channel, err.Error())
					continue
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, cancel
}

// LocalFeed is an in-process Feed for single instance deployments.
type LocalFeed struct {
	mu   sync.RWMutex
	subs map[chan Change][]string
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: map[chan Change][]string{}}
}

func (f *LocalFeed) Publish(_ context.Context, channel string, c Change) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch, channels := range f.subs {
		if !slices.Contains(channels, channel) {
			continue
		}
		select {
		case ch <- c:
		default:
		}
	}
	return nil
}

func (f *LocalFeed) Subscribe(ctx context.Context, channels ...string) (<-chan Change, func()) {
	ch := make(chan Change, 64)
	f.mu.Lock()
	f.subs[ch] = channels
	f.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	stop := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
			close(ch)
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
	return ch, stop
}

// Debouncer collapses bursts of Trigger calls into one fn call made after
// wait has passed without a new trigger. A steady stream of triggers still
// fires at least every maxWait, which is twice wait.
type Debouncer struct {
	mu       sync.Mutex
	wait     time.Duration
	maxWait  time.Duration
	fn       func()
	timer    *time.Timer
	deadline time.Time
	gen      int
}

func NewDebouncer(wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{wait: wait, maxWait: 2 * wait, fn: fn}
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	if d.timer == nil {
		d.deadline = now.Add(d.maxWait)
	} else {
		d.timer.Stop()
	}
	delay := d.wait
	if now.Add(delay).After(d.deadline) {
		delay = d.deadline.Sub(now)
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen int) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
