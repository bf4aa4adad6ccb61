package models

import (
	"sync"

	"github.com/google/uuid"

	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/logger"
)

// Publisher holds the current snapshot and broadcasts every replacement to
// all subscribers. Each subscriber sees replacements in mutation order, with
// nothing dropped; a slow subscriber never blocks the publisher or its peers.
//
// Late subscribers only see future replacements. Callers that need the state
// as of subscription time should read Current() separately.
type Publisher struct {
	mu      sync.RWMutex
	current Snapshot
	subs    map[string]*subscriber
	log     *logger.Logger
}

// NewPublisher creates a publisher holding an empty snapshot.
func NewPublisher() *Publisher {
	return &Publisher{
		current: Snapshot{},
		subs:    make(map[string]*subscriber),
		log:     logger.WithComponent("state_publisher"),
	}
}

// Current returns a copy of the current snapshot. Before the first
// replacement this is an empty snapshot, not an error.
func (p *Publisher) Current() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.Clone()
}

// Subscribe registers a new subscriber and returns its event channel plus a
// cancel function. The channel is closed after cancel.
func (p *Publisher) Subscribe() (<-chan Snapshot, func()) {
	sub := newSubscriber(uuid.NewString())
	go sub.run()

	p.mu.Lock()
	p.subs[sub.id] = sub
	p.mu.Unlock()

	p.log.Debug("Subscriber registered", "id", sub.id)

	cancel := func() {
		p.mu.Lock()
		delete(p.subs, sub.id)
		p.mu.Unlock()
		sub.stop()
		p.log.Debug("Subscriber removed", "id", sub.id)
	}
	return sub.ch, cancel
}

// Replace installs a new snapshot and queues it to every subscriber. Queuing
// happens under the publisher lock so each subscriber observes replacements
// in exactly the order they were installed.
func (p *Publisher) Replace(snap Snapshot) {
	p.mu.Lock()
	p.current = snap.Clone()
	for _, sub := range p.subs {
		sub.push(snap.Clone())
	}
	count := len(p.subs)
	p.mu.Unlock()

	p.log.Debug("Snapshot replaced", "models", len(snap), "subscribers", count)
}

// SubscriberCount returns the number of active subscribers.
func (p *Publisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}

// subscriber owns an unbounded ordered queue drained by its own goroutine,
// so the publisher never blocks on channel sends.
type subscriber struct {
	id      string
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Snapshot
	stopped bool
	done    chan struct{}
	ch      chan Snapshot
}

func newSubscriber(id string) *subscriber {
	s := &subscriber{
		id:   id,
		done: make(chan struct{}),
		ch:   make(chan Snapshot, 1),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *subscriber) push(snap Snapshot) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, snap)
	s.mu.Unlock()
	s.cond.Signal()
}

func (s *subscriber) stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	close(s.done)
	s.cond.Signal()
}

func (s *subscriber) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped {
			s.mu.Unlock()
			close(s.ch)
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- next:
		case <-s.done:
			close(s.ch)
			return
		}
	}
}
