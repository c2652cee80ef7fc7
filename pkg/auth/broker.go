package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
)

type SessionEvent struct {
	Kind        EventKind
	PrincipalID uuid.UUID
	Email       string
	IPAddress   string
	At          time.Time
}

// Broker fans session changes out to subscribers. Delivery is
// asynchronous: Publish never blocks on a slow subscriber.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(SessionEvent)
	wg     sync.WaitGroup
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]func(SessionEvent))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Broker) Subscribe(fn func(SessionEvent)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Broker) Publish(ev SessionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, fn := range b.subs {
		b.wg.Add(1)
		go func(fn func(SessionEvent)) {
			defer b.wg.Done()
			fn(ev)
		}(fn)
	}
}

// Wait blocks until every delivery started so far has returned.
func (b *Broker) Wait() {
	b.wg.Wait()
}
