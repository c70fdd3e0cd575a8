// Command talon is a small example harness driving internal/lob directly,
// in a single process, with a single goroutine — the core's single-writer
// contract needs nothing more. It is the CLI analogue of the teacher's
// cmd/client, adapted to call straight into the library instead of
// encoding requests onto a wire: the spec excludes a network wire protocol
// from this repository entirely, so there is no server on the other end.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"talon/internal/config"
	"talon/internal/lob"
	"talon/internal/logging"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel)

	action := flag.String("action", "place", "Action to perform: place, cancel, modify, book")
	sideStr := flag.String("side", "buy", "Order side: buy or sell")
	price := flag.Int64("price", 100, "Limit price, in ticks")
	qty := flag.Uint64("qty", 10, "Quantity")
	orderID := flag.Uint64("order-id", 1, "Order id (for place/cancel/modify)")
	newPrice := flag.Int64("new-price", 0, "New price for modify (defaults to -price)")
	newQty := flag.Uint64("new-qty", 0, "New quantity for modify (defaults to -qty)")
	seed := flag.Bool("seed", true, "Pre-populate the book with a small resting scenario before running the action")
	flag.Parse()

	runTag := uuid.New().String()
	log.Info().Str("run", runTag).Str("instrument", cfg.Instrument).Msg("talon harness starting")

	book := lob.New(cfg.Instrument, cfg.ArenaCapacity, lob.WithTradeSink(func(tr lob.Trade) {
		fmt.Printf("trade seq=%d maker=%d taker=%d price=%d qty=%d\n",
			tr.Seq, tr.MakerOrderID, tr.TakerOrderID, tr.Price, tr.Quantity)
	}))

	if *seed {
		seedScenario(book)
	}

	side := lob.Buy
	if *sideStr == "sell" {
		side = lob.Sell
	}

	switch *action {
	case "place":
		pr, err := book.PlaceLimit(lob.OrderID(*orderID), side, lob.Price(*price), lob.Quantity(*qty))
		if err != nil {
			log.Error().Err(err).Msg("place rejected")
			os.Exit(1)
		}
		fmt.Printf("filled=%d resting=%d trades=%d\n", pr.Filled, pr.Resting, len(pr.Trades))

	case "cancel":
		cr, err := book.Cancel(lob.OrderID(*orderID))
		if err != nil {
			log.Error().Err(err).Msg("cancel rejected")
			os.Exit(1)
		}
		fmt.Printf("cancelled_qty=%d\n", cr.CancelledQty)

	case "modify":
		np := *newPrice
		if np == 0 {
			np = *price
		}
		nq := *newQty
		if nq == 0 {
			nq = *qty
		}
		mr, err := book.Modify(lob.OrderID(*orderID), lob.Price(np), lob.Quantity(nq))
		if err != nil {
			log.Error().Err(err).Msg("modify rejected")
			os.Exit(1)
		}
		fmt.Printf("requote=%v cancelled_qty=%d\n", mr.Requote, mr.CancelledQty)

	case "book":
		// no-op: fall through to printBook below.

	default:
		fmt.Fprintf(os.Stderr, "unknown action %q\n", *action)
		os.Exit(1)
	}

	printBook(book)
}

// seedScenario places a small, deterministic set of resting orders so that
// place/cancel/modify have something to interact with on a fresh book.
func seedScenario(book *lob.Book) {
	seedOrders := []struct {
		id    lob.OrderID
		side  lob.Side
		price lob.Price
		qty   lob.Quantity
	}{
		{100, lob.Buy, 99, 50},
		{101, lob.Buy, 98, 30},
		{200, lob.Sell, 101, 40},
		{201, lob.Sell, 102, 20},
	}
	for _, o := range seedOrders {
		if _, err := book.PlaceLimit(o.id, o.side, o.price, o.qty); err != nil {
			log.Warn().Err(err).Uint64("order_id", uint64(o.id)).Msg("seed order rejected")
		}
	}
}

func printBook(book *lob.Book) {
	snap := book.Snapshot()
	fmt.Printf("book %s\n", snap.Instrument)
	fmt.Println("  bids:")
	for _, lvl := range snap.Bids {
		fmt.Printf("    %d x %d (%d orders)\n", lvl.Price, lvl.AggQty, lvl.OrderCount)
	}
	fmt.Println("  asks:")
	for _, lvl := range snap.Asks {
		fmt.Printf("    %d x %d (%d orders)\n", lvl.Price, lvl.AggQty, lvl.OrderCount)
	}

	stats := book.Stats()
	fmt.Printf("stats: resting=%d free=%d next_unused=%d capacity=%d\n",
		stats.RestingOrders, stats.FreeListSize, stats.NextUnused, stats.ArenaCapacity)
}
