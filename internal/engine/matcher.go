package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/limitbook/internal/domain"
)

// Config holds the tunables of a book instance.
type Config struct {
	// ExpiryHour is the local wall-clock hour (0–23) at which good_for_day
	// orders are swept. Out-of-range values fall back to 16:00.
	ExpiryHour int
	// ExpiryMargin is added to the sweeper's wait so it never wakes just
	// short of the boundary.
	ExpiryMargin time.Duration
	// Location resolves the expiry boundary's wall clock.
	Location *time.Location
}

const (
	defaultExpiryHour   = 16
	defaultExpiryMargin = 100 * time.Millisecond
)

// Orderbook is a single instrument's limit order book: two price-ordered
// sides of FIFO queues, a flat id index spanning both, and cached level
// aggregates. One mutex guards the whole structure; every public
// operation holds it for its full duration, so callers observe a
// linearized book and matching always runs to exhaustion before an
// operation returns.
type Orderbook struct {
	mu     sync.Mutex
	bids   *bookSide
	asks   *bookSide
	orders map[string]*entry // order id → location, both sides
	levels levelAggregates

	expiryHour   int
	expiryMargin time.Duration
	loc          *time.Location
	now          func() time.Time

	sweepState atomic.Int32
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// New creates an order book and starts its good_for_day expiry sweeper.
// Close must be called to stop the sweeper.
func New(cfg Config) *Orderbook {
	b := newOrderbook(cfg)
	b.wg.Add(1)
	go b.pruneGoodForDay()
	return b
}

// newOrderbook builds the book without starting the sweeper. Tests stub
// the clock before launching it.
func newOrderbook(cfg Config) *Orderbook {
	if cfg.ExpiryHour < 0 || cfg.ExpiryHour > 23 {
		cfg.ExpiryHour = defaultExpiryHour
	}
	if cfg.ExpiryMargin <= 0 {
		cfg.ExpiryMargin = defaultExpiryMargin
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Orderbook{
		bids:         newBidSide(),
		asks:         newAskSide(),
		orders:       make(map[string]*entry),
		levels:       make(levelAggregates),
		expiryHour:   cfg.ExpiryHour,
		expiryMargin: cfg.ExpiryMargin,
		loc:          cfg.Location,
		now:          time.Now,
		done:         make(chan struct{}),
	}
}

// Close signals the sweeper to shut down and blocks until it exits. It is
// safe to call more than once.
func (b *Orderbook) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
}

// AddOrder submits an order: admission checks, insertion, then a full
// matching pass. The returned trades are empty both when nothing crossed
// and when the order was rejected (duplicate id, unmatchable market
// order, unsatisfiable fill_and_kill/fill_or_kill) — a rejected order is
// simply never inserted.
func (b *Orderbook) AddOrder(order *domain.Order) []domain.Trade {
	if order == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.orders[order.ID]; ok {
		return nil
	}

	// A market order is repriced to the opposite side's worst resting
	// price, guaranteeing it can execute against the entire visible book.
	// With nothing to match against it is discarded, not queued.
	if order.Type == domain.OrderTypeMarket {
		worst, ok := b.opposite(order.Side).worst()
		if !ok {
			return nil
		}
		order.ToGoodTillCancel(worst.price)
	}

	if order.Type == domain.OrderTypeFillAndKill && !b.canMatch(order.Side, order.Price) {
		return nil
	}
	if order.Type == domain.OrderTypeFillOrKill && !b.canFullyFill(order.Side, order.Price, order.Quantity) {
		return nil
	}

	e := &entry{order: order}
	b.sideOf(order.Side).getOrCreate(order.Price).pushBack(e)
	b.orders[order.ID] = e
	b.levels.apply(order.Price, order.Quantity, levelActionAdd)

	return b.matchOrders()
}

// CancelOrder removes a resting order. Unknown ids are a silent no-op, so
// cancellation is idempotent.
func (b *Orderbook) CancelOrder(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelLocked(id)
}

// CancelOrders removes a batch of resting orders under a single lock
// acquisition, so the sweep (or any bulk caller) does not interleave with
// other mutators mid-batch.
func (b *Orderbook) CancelOrders(ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.cancelLocked(id)
	}
}

// ModifyOrder cancels the order and re-admits a fresh one carrying the
// new price/side/quantity but the original type, re-entering the full
// admission path. The modified order loses its queue position. Returns no
// trades if the id is unknown.
func (b *Orderbook) ModifyOrder(mod domain.OrderModify) []domain.Trade {
	b.mu.Lock()
	e, ok := b.orders[mod.ID]
	if !ok {
		b.mu.Unlock()
		return nil
	}
	typ := e.order.Type
	b.mu.Unlock()

	b.CancelOrder(mod.ID)

	order, err := mod.ToOrder(typ)
	if err != nil {
		return nil
	}
	return b.AddOrder(order)
}

// Size returns the count of currently resting orders.
func (b *Orderbook) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}

// Levels returns per-side snapshots of (price, resting quantity, order
// count), ordered best-first. The snapshot is derived from the live
// queues, not the cached aggregates; by invariant the two agree.
func (b *Orderbook) Levels() (bids, asks []domain.LevelInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return snapshotSide(b.bids), snapshotSide(b.asks)
}

func snapshotSide(s *bookSide) []domain.LevelInfo {
	infos := make([]domain.LevelInfo, 0, s.levels.Len())
	s.walk(func(lvl *priceLevel) bool {
		info := domain.LevelInfo{Price: lvl.price}
		for e := lvl.head; e != nil; e = e.next {
			info.Quantity += e.order.RemainingQuantity
			info.OrderCount++
		}
		infos = append(infos, info)
		return true
	})
	return infos
}

// sideOf returns the book side orders of the given side rest on.
func (b *Orderbook) sideOf(s domain.Side) *bookSide {
	if s == domain.SideBid {
		return b.bids
	}
	return b.asks
}

// opposite returns the book side an order of the given side matches against.
func (b *Orderbook) opposite(s domain.Side) *bookSide {
	if s == domain.SideBid {
		return b.asks
	}
	return b.bids
}

// canMatch reports whether an order at the given side/price would cross
// the current best opposite price: a bid crosses when price >= best ask,
// an ask when price <= best bid.
func (b *Orderbook) canMatch(side domain.Side, price int64) bool {
	best, ok := b.opposite(side).best()
	if !ok {
		return false
	}
	if side == domain.SideBid {
		return price >= best.price
	}
	return price <= best.price
}

// canFullyFill reports whether the opposite side holds enough reachable
// liquidity to fill the full quantity. It walks the opposite levels
// best-first, counting each level that lies within the order's limit,
// against the cached aggregates — a liquidity-sufficiency check, not a
// simulation of the match.
func (b *Orderbook) canFullyFill(side domain.Side, price, quantity int64) bool {
	if !b.canMatch(side, price) {
		return false
	}

	remaining := quantity
	fillable := false
	b.opposite(side).walk(func(lvl *priceLevel) bool {
		// Levels are visited best-first, so the first level past the
		// order's limit ends the walk.
		if side == domain.SideBid && lvl.price > price {
			return false
		}
		if side == domain.SideAsk && lvl.price < price {
			return false
		}

		available := b.levels.quantityAt(lvl.price)
		if remaining <= available {
			fillable = true
			return false
		}
		remaining -= available
		return true
	})

	return fillable
}

// cancelLocked erases an order from its queue, its level (if the queue
// empties), and the flat index, and applies the on-cancelled aggregate
// delta for the order's remaining quantity. No-op on unknown ids.
func (b *Orderbook) cancelLocked(id string) {
	e, ok := b.orders[id]
	if !ok {
		return
	}
	order := e.order
	delete(b.orders, id)

	side := b.sideOf(order.Side)
	lvl := e.level
	lvl.unlink(e)
	if lvl.empty() {
		side.removeLevel(lvl.price)
	}

	b.levels.apply(order.Price, order.RemainingQuantity, levelActionRemove)
}

// matchOrders runs the continuous double auction to exhaustion: while the
// book is crossed, the front of the best bid level fills against the
// front of the best ask level for the minimum of their remaining
// quantities. Each match produces one trade priced at each counterparty's
// own resting price. The loop leaves the book uncrossed.
func (b *Orderbook) matchOrders() []domain.Trade {
	var trades []domain.Trade

	for {
		bidLvl, ok := b.bids.best()
		if !ok {
			break
		}
		askLvl, ok := b.asks.best()
		if !ok {
			break
		}
		if bidLvl.price < askLvl.price {
			break
		}

		for !bidLvl.empty() && !askLvl.empty() {
			bid := bidLvl.head.order
			ask := askLvl.head.order

			qty := min(bid.RemainingQuantity, ask.RemainingQuantity)
			bid.Fill(qty)
			ask.Fill(qty)

			if bid.IsFilled() {
				bidLvl.unlink(bidLvl.head)
				delete(b.orders, bid.ID)
			}
			if ask.IsFilled() {
				askLvl.unlink(askLvl.head)
				delete(b.orders, ask.ID)
			}

			trades = append(trades, domain.Trade{
				TradeID:    uuid.New().String(),
				Bid:        domain.TradeLeg{OrderID: bid.ID, Price: bid.Price, Quantity: qty},
				Ask:        domain.TradeLeg{OrderID: ask.ID, Price: ask.Price, Quantity: qty},
				ExecutedAt: b.now(),
			})

			b.onMatched(bid.Price, qty, bid.IsFilled())
			b.onMatched(ask.Price, qty, ask.IsFilled())
		}

		if bidLvl.empty() {
			b.bids.removeLevel(bidLvl.price)
		}
		if askLvl.empty() {
			b.asks.removeLevel(askLvl.price)
		}
	}

	// A fill_and_kill order admitted this call may be left at the front
	// of its side after a partial fill. It must never rest.
	if lvl, ok := b.bids.best(); ok {
		if front := lvl.head.order; front.Type == domain.OrderTypeFillAndKill {
			b.cancelLocked(front.ID)
		}
	}
	if lvl, ok := b.asks.best(); ok {
		if front := lvl.head.order; front.Type == domain.OrderTypeFillAndKill {
			b.cancelLocked(front.ID)
		}
	}

	return trades
}

// onMatched applies the aggregate delta for one side of a match: a full
// removal when the order filled, a partial reduction otherwise.
func (b *Orderbook) onMatched(price, quantity int64, filled bool) {
	if filled {
		b.levels.apply(price, quantity, levelActionRemove)
	} else {
		b.levels.apply(price, quantity, levelActionMatch)
	}
}
