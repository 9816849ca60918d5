// ABOUTME: Ordered asynchronous fan-out of auth state changes
// ABOUTME: Each subscriber drains its own queue on a dedicated goroutine
package auth

import "sync"

// Notifier delivers principals to subscribers without blocking publishers.
type Notifier struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
}

type subscriber struct {
	fn     func(*User)
	mu     sync.Mutex
	queue  []*User
	signal chan struct{}
	done   chan struct{}
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers fn and queues initial as its first delivery.
func (n *Notifier) Subscribe(fn func(*User), initial *User) func() {
	s := &subscriber{
		fn:     fn,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = s
	s.push(initial)
	n.mu.Unlock()

	go s.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(s.done)
		})
	}
}

// Publish queues u for every current subscriber.
func (n *Notifier) Publish(u *User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.subs {
		s.push(u)
	}
}

func (s *subscriber) push(u *User) {
	var cp *User
	if u != nil {
		c := *u
		cp = &c
	}
	s.mu.Lock()
	s.queue = append(s.queue, cp)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
		}

		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			u := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case <-s.done:
				return
			default:
			}
			s.fn(u)
		}
	}
}
