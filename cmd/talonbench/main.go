// Command talonbench drives internal/lob under the multi-producer fan-in
// architecture §5 of the spec anticipates: N goroutines generate synthetic
// orders concurrently, all serialized through one channel (internal/bench),
// and exactly one goroutine drains that channel into the Book. Throughput
// is reported the way the teacher's own benchmarking reference
// (ejyy-femto_go's main.go) does: total operations over wall-clock elapsed,
// printed as both ops/sec and ns/op.
package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"talon/internal/bench"
	"talon/internal/config"
	"talon/internal/lob"
	"talon/internal/logging"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel)

	ordersPerProducer := flag.Int("orders-per-producer", 200_000, "Synthetic orders generated by each producer goroutine")
	flag.Parse()

	runTag := uuid.New().String()
	log.Info().
		Str("run", runTag).
		Str("instrument", cfg.Instrument).
		Int("producers", cfg.Producers).
		Int("orders_per_producer", *ordersPerProducer).
		Msg("talonbench starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var totalTrades uint64
	book := lob.New(cfg.Instrument, cfg.ArenaCapacity, lob.WithTradeSink(func(lob.Trade) {
		atomic.AddUint64(&totalTrades, 1)
	}))

	pool := bench.NewProducerPool(cfg.Producers, 4096)
	t, _ := tomb.WithContext(ctx)

	pool.Run(t, *ordersPerProducer, newGenerator(*ordersPerProducer))

	go func() {
		_ = t.Wait()
		pool.Close()
	}()

	start := time.Now()
	var totalCommands uint64
	var rejected uint64
	for cmd := range pool.Out() {
		totalCommands++
		if err := apply(book, cmd); err != nil {
			rejected++
		}
	}
	elapsed := time.Since(start)

	nsPerOp := float64(elapsed.Nanoseconds()) / float64(totalCommands)
	opsPerSec := float64(totalCommands) / elapsed.Seconds()

	fmt.Printf("%d commands processed in %v -> %.1f ns/op, %.0f ops/sec\n", totalCommands, elapsed, nsPerOp, opsPerSec)
	fmt.Printf("%d trades executed, %d commands rejected\n", atomic.LoadUint64(&totalTrades), rejected)

	stats := book.Stats()
	fmt.Printf("final book stats: resting=%d free=%d next_unused=%d capacity=%d\n",
		stats.RestingOrders, stats.FreeListSize, stats.NextUnused, stats.ArenaCapacity)
}

// apply is the single point of contact between the fan-in channel and the
// Book: only this goroutine ever calls into book.
func apply(book *lob.Book, cmd bench.Command) error {
	switch cmd.Kind {
	case bench.CancelCommand:
		_, err := book.Cancel(cmd.OrderID)
		return err
	default:
		_, err := book.PlaceLimit(cmd.OrderID, cmd.Side, cmd.Price, cmd.Quantity)
		return err
	}
}

// newGenerator builds a per-producer synthetic order stream. Each producer
// owns its own xorshift state and its own order-id namespace
// (producerID*ordersPerProducer + idx + 1), so producers need no shared
// synchronization to generate commands deterministically — matching
// ejyy-femto_go's fixed-seed xorshift PRNG used for reproducible
// benchmarking.
func newGenerator(ordersPerProducer int) bench.Generator {
	return func(producerID, idx int) bench.Command {
		state := xorshiftSeed(producerID, idx)

		// Roughly 1 in 10 commands cancels one of this producer's own
		// earlier orders, once it has placed enough to have a candidate.
		if idx > 64 && state%10 == 0 {
			offset := 1 + int(state%64)
			return bench.Command{
				Kind:    bench.CancelCommand,
				OrderID: producerOrderID(producerID, ordersPerProducer, idx-offset),
			}
		}

		side := lob.Buy
		if state%2 == 1 {
			side = lob.Sell
		}
		return bench.Command{
			Kind:     bench.PlaceCommand,
			OrderID:  producerOrderID(producerID, ordersPerProducer, idx),
			Side:     side,
			Price:    lob.Price(95 + state%10),
			Quantity: lob.Quantity(1 + state%500),
		}
	}
}

func producerOrderID(producerID, ordersPerProducer, idx int) lob.OrderID {
	return lob.OrderID(uint64(producerID)*uint64(ordersPerProducer) + uint64(idx) + 1)
}

// xorshiftSeed derives a deterministic pseudo-random value from a
// producer/index pair, avoiding any shared mutable RNG state across
// concurrently-running producer goroutines.
func xorshiftSeed(producerID, idx int) uint64 {
	x := uint64(producerID)*2654435761 + uint64(idx)*40503 + 1
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	return x
}
