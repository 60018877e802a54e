package hook

import (
	"context"
	"log"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// QueueSize is the number of pending hook runs before new ones are dropped.
const QueueSize = 16

type job struct {
	rule Rule
	sig  gesture.Signal
}

// Dispatcher implements gesture.Publisher. It fires matching rules when a
// hand's finger vector changes and runs them on a single background worker,
// so a slow command never stalls the capture loop.
type Dispatcher struct {
	rules []Rule
	exec  *Executor

	mu      sync.Mutex
	last    map[int]string
	dropped int
	closed  bool

	queue chan job
	done  chan struct{}
}

// NewDispatcher validates rules and starts the worker.
func NewDispatcher(rules []Rule, exec *Executor) (*Dispatcher, error) {
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	d := &Dispatcher{
		rules: rules,
		exec:  exec,
		last:  make(map[int]string),
		queue: make(chan job, QueueSize),
		done:  make(chan struct{}),
	}
	go d.run()
	return d, nil
}

// Publish implements gesture.Publisher.
func (d *Dispatcher) Publish(sig gesture.Signal) error {
	fingers := sig.Fingers.String()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	if prev, ok := d.last[sig.Hand]; ok && prev == fingers {
		return nil
	}
	d.last[sig.Hand] = fingers

	for _, r := range d.rules {
		if !r.Matches(sig.Fingers) {
			continue
		}
		select {
		case d.queue <- job{rule: r, sig: sig}:
		default:
			d.dropped++
			log.Printf("Hook queue full, dropping %q", r.Name)
		}
	}
	return nil
}

// Dropped returns how many hook runs were skipped because the queue was full.
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Close stops accepting signals and waits for queued hooks to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for j := range d.queue {
		if err := d.exec.Execute(context.Background(), j.rule, j.sig); err != nil {
			log.Printf("Hook error: %v", err)
		}
	}
}
