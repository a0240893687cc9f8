package notify

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Kind classifies a notification for styling.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// ParseKind maps a string onto a [Kind], defaulting to [KindInfo].
func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSuccess, KindWarning, KindError:
		return k
	default:
		return KindInfo
	}
}

// Notification is the content of the toast slot.
type Notification struct {
	// Sequence increases with every Show and identifies this instance.
	Sequence uint64 `json:"sequence"`
	Message  string `json:"message"`
	Kind     Kind   `json:"kind"`
}

// Event is delivered to subscribers whenever the slot changes.
type Event struct {
	Notification
	Visible bool `json:"visible"`
}

// Notifier is the sink components use to surface a message.
type Notifier interface {
	Show(message string, kind Kind)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(message string, kind Kind)

func (f NotifierFunc) Show(message string, kind Kind) { f(message, kind) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(string, Kind) {})

// Option configures a [Center].
type Option func(*Center)

// WithTTL sets how long a notification stays visible. Non-positive values keep the default.
func WithTTL(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Center) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger attaches a logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Center) {
		if l != nil {
			c.logger = l
		}
	}
}

// Center owns the single notification slot. Safe for concurrent use.
type Center struct {
	mu      sync.Mutex
	clock   Clock
	ttl     time.Duration
	logger  *log.Logger
	current Notification
	visible bool
	timer   Timer
	seq     uint64
	subs    map[int]func(Event)
	nextSub int
}

// NewCenter creates an empty notification center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		clock:  RealClock,
		ttl:    DefaultTTL,
		logger: log.New(io.Discard),
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured visibility window.
func (c *Center) TTL() time.Duration { return c.ttl }

// Show replaces the current notification and rearms the expiry timer.
func (c *Center) Show(message string, kind Kind) {
	if kind == "" {
		kind = KindInfo
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.seq++
	seq := c.seq
	c.current = Notification{Sequence: seq, Message: message, Kind: kind}
	c.visible = true
	c.timer = c.clock.AfterFunc(c.ttl, func() { c.expire(seq) })
	ev, subs := c.eventLocked()
	c.mu.Unlock()

	c.logger.Debug("notification shown", "kind", kind, "sequence", seq)
	publish(subs, ev)
}

// Current returns the visible notification, if any.
func (c *Center) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.visible
}

// Dismiss clears the slot immediately.
func (c *Center) Dismiss() {
	c.mu.Lock()
	if !c.visible {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.visible = false
	ev, subs := c.eventLocked()
	c.mu.Unlock()

	publish(subs, ev)
}

// Subscribe registers fn for slot changes and returns a function that removes it.
//
// fn runs on the goroutine that changed the slot and must not block.
func (c *Center) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// expire clears the slot if seq is still the current notification.
func (c *Center) expire(seq uint64) {
	c.mu.Lock()
	if seq != c.seq || !c.visible {
		c.mu.Unlock()
		c.logger.Debug("stale notification timer ignored", "sequence", seq)
		return
	}
	c.visible = false
	c.timer = nil
	ev, subs := c.eventLocked()
	c.mu.Unlock()

	publish(subs, ev)
}

func (c *Center) eventLocked() (Event, []func(Event)) {
	subs := make([]func(Event), 0, len(c.subs))
	for i := 0; i < c.nextSub; i++ {
		if fn, ok := c.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return Event{Notification: c.current, Visible: c.visible}, subs
}

func publish(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
