// Package bench provides the multi-producer fan-in plumbing the benchmark
// driver (cmd/talonbench) uses to exercise internal/lob the way the spec's
// concurrency model requires: many goroutines generating orders,
// serialized through one channel, drained by exactly one goroutine that is
// the sole caller into a given *lob.Book.
//
// The producer pool's shape is grounded on the teacher's WorkerPool
// (internal/worker.go): a fixed-size pool of tomb-supervised goroutines.
// The teacher's pool pulls tasks off a channel to do work; this one pushes
// generated commands onto a channel instead, since a benchmark driver is a
// source of work rather than a consumer of it — but the supervision shape
// (fixed worker count, t.Dying() honored in the generation loop) is the
// same.
package bench

import (
	tomb "gopkg.in/tomb.v2"

	"talon/internal/lob"
)

// CommandKind distinguishes the operations a producer can submit.
type CommandKind uint8

const (
	PlaceCommand CommandKind = iota
	CancelCommand
)

// Command is one unit of synthetic load, destined for the single consumer
// goroutine that owns the Book.
type Command struct {
	Kind     CommandKind
	OrderID  lob.OrderID
	Side     lob.Side
	Price    lob.Price
	Quantity lob.Quantity
}

// Generator produces the idx-th command for producer id. Implementations
// are called concurrently across producers and must not share mutable
// state without their own synchronization.
type Generator func(producerID int, idx int) Command

// ProducerPool fans a fixed number of goroutines into a single output
// channel.
type ProducerPool struct {
	n   int
	out chan Command
}

// NewProducerPool builds a pool of n producer goroutines sharing one output
// channel of the given buffer size.
func NewProducerPool(n, bufferSize int) *ProducerPool {
	return &ProducerPool{
		n:   n,
		out: make(chan Command, bufferSize),
	}
}

// Out is the single channel every producer writes to, and the only thing
// the consumer goroutine reads from.
func (p *ProducerPool) Out() <-chan Command {
	return p.out
}

// Run starts all producers under t, each emitting commandsPerProducer
// commands via gen before exiting. Run does not block; it returns once all
// producer goroutines have been registered with t.
func (p *ProducerPool) Run(t *tomb.Tomb, commandsPerProducer int, gen Generator) {
	for id := 0; id < p.n; id++ {
		id := id
		t.Go(func() error {
			for i := 0; i < commandsPerProducer; i++ {
				select {
				case <-t.Dying():
					return nil
				case p.out <- gen(id, i):
				}
			}
			return nil
		})
	}
}

// Close closes the output channel. Callers must ensure all producers have
// exited (e.g. by waiting on the owning tomb) before calling Close, or a
// send on a closed channel will panic.
func (p *ProducerPool) Close() {
	close(p.out)
}
