package engine

import (
	"github.com/google/btree"

	"github.com/efreitasn/limitbook/internal/domain"
)

// entry is an order's location in the book: the order itself plus its
// position in the FIFO queue of its price level. Orders are reached
// through the flat id index, never through raw positions held elsewhere,
// so removal from the middle of a queue is an O(1) unlink.
type entry struct {
	order      *domain.Order
	level      *priceLevel
	prev, next *entry
}

// priceLevel is one price's FIFO queue of resting orders. Arrival order
// is priority within the level.
type priceLevel struct {
	price      int64
	head, tail *entry
}

// pushBack appends an entry at the lowest priority position.
func (l *priceLevel) pushBack(e *entry) {
	e.level = l
	e.prev = l.tail
	e.next = nil
	if l.tail != nil {
		l.tail.next = e
	} else {
		l.head = e
	}
	l.tail = e
}

// unlink removes an entry from anywhere in the queue.
func (l *priceLevel) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev = nil
	e.next = nil
	e.level = nil
}

// empty reports whether the level holds no orders.
func (l *priceLevel) empty() bool {
	return l.head == nil
}

// bookSide is one side's price-ordered collection of levels. Bids order
// price descending and asks ascending, so Min() is always the best level
// on either side.
type bookSide struct {
	side   domain.Side
	levels *btree.BTreeG[*priceLevel]
}

const btreeDegree = 32

// bidLevelLess orders bid levels by price descending: the highest bid is
// the best and comes first.
func bidLevelLess(a, b *priceLevel) bool {
	return a.price > b.price
}

// askLevelLess orders ask levels by price ascending: the lowest ask is
// the best and comes first.
func askLevelLess(a, b *priceLevel) bool {
	return a.price < b.price
}

// newBidSide creates the bid side of the book.
func newBidSide() *bookSide {
	return &bookSide{
		side:   domain.SideBid,
		levels: btree.NewG(btreeDegree, bidLevelLess),
	}
}

// newAskSide creates the ask side of the book.
func newAskSide() *bookSide {
	return &bookSide{
		side:   domain.SideAsk,
		levels: btree.NewG(btreeDegree, askLevelLess),
	}
}

// level returns the price level at the given price, if present.
func (s *bookSide) level(price int64) (*priceLevel, bool) {
	return s.levels.Get(&priceLevel{price: price})
}

// getOrCreate returns the price level at the given price, creating an
// empty one if the price is not yet populated.
func (s *bookSide) getOrCreate(price int64) *priceLevel {
	if lvl, ok := s.level(price); ok {
		return lvl
	}
	lvl := &priceLevel{price: price}
	s.levels.ReplaceOrInsert(lvl)
	return lvl
}

// removeLevel erases the price level at the given price. The caller must
// have emptied its queue first: a level exists iff it is non-empty.
func (s *bookSide) removeLevel(price int64) {
	s.levels.Delete(&priceLevel{price: price})
}

// best returns the top-of-book level: highest bid or lowest ask.
func (s *bookSide) best() (*priceLevel, bool) {
	return s.levels.Min()
}

// worst returns the bottom-of-book level. Market orders are repriced to
// the opposite side's worst price so they can sweep the whole book.
func (s *bookSide) worst() (*priceLevel, bool) {
	return s.levels.Max()
}

// walk iterates levels from best to worst. The callback returns true to
// continue, false to stop.
func (s *bookSide) walk(fn func(*priceLevel) bool) {
	s.levels.Ascend(fn)
}

// empty reports whether the side has no resting orders.
func (s *bookSide) empty() bool {
	return s.levels.Len() == 0
}

// levelAction tags a delta applied to a price level's aggregate.
type levelAction int

const (
	levelActionAdd levelAction = iota
	levelActionRemove
	levelActionMatch
)

// levelData is the cached aggregate for one price: resting quantity
// summed over the level's orders, and how many orders rest there.
type levelData struct {
	quantity int64
	count    int
}

// levelAggregates caches per-price totals, keyed by price alone. At rest
// a price can be populated on only one side (the book is never crossed at
// rest), and during a matching pass the bid and ask deltas at a shared
// price are symmetric, so a single map stays consistent.
//
// Aggregates are only ever moved by deltas applied together with the
// order mutation that caused them. They are never recomputed from the
// queues, which keeps the two from drifting apart.
type levelAggregates map[int64]*levelData

// apply folds one delta into the aggregate at price. An aggregate is
// created on the first add at a price and deleted the instant its order
// count returns to zero.
func (a levelAggregates) apply(price, quantity int64, action levelAction) {
	data, ok := a[price]
	if !ok {
		data = &levelData{}
		a[price] = data
	}

	switch action {
	case levelActionAdd:
		data.count++
		data.quantity += quantity
	case levelActionRemove:
		data.count--
		data.quantity -= quantity
	case levelActionMatch:
		data.quantity -= quantity
	}

	if data.count == 0 {
		delete(a, price)
	}
}

// quantityAt returns the cached resting quantity at price, or 0 if no
// orders rest there.
func (a levelAggregates) quantityAt(price int64) int64 {
	if data, ok := a[price]; ok {
		return data.quantity
	}
	return 0
}
