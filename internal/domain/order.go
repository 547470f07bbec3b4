package domain

import "time"

// OrderType controls how an order is admitted to the book and how long
// it may rest there.
type OrderType string

const (
	// OrderTypeGoodTillCancel rests indefinitely until filled or cancelled.
	OrderTypeGoodTillCancel OrderType = "good_till_cancel"
	// OrderTypeFillAndKill executes whatever quantity matches immediately;
	// the unmatched remainder is discarded, never rested.
	OrderTypeFillAndKill OrderType = "fill_and_kill"
	// OrderTypeFillOrKill executes only if its entire quantity can be
	// matched immediately; otherwise nothing executes.
	OrderTypeFillOrKill OrderType = "fill_or_kill"
	// OrderTypeGoodForDay rests like good_till_cancel but is auto-cancelled
	// at the daily expiry boundary.
	OrderTypeGoodForDay OrderType = "good_for_day"
	// OrderTypeMarket carries no limit price; it is repriced to the worst
	// resting opposite price at admission time.
	OrderTypeMarket OrderType = "market"
)

// Side indicates whether an order is a bid (buy) or ask (sell).
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// Opposite returns the other side of the market.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// Order is the mutable unit of resting liquidity. Prices are integer
// cents; quantities are whole units. RemainingQuantity is the single
// source of truth for fill state and only ever decreases.
type Order struct {
	ID                string
	Type              OrderType
	Side              Side
	Price             int64 // cents; meaningless for market orders until repriced
	Quantity          int64
	RemainingQuantity int64
	CreatedAt         time.Time
}

// NewOrder validates and constructs a limit-priced order. Market orders
// must be constructed with NewMarketOrder.
func NewOrder(id string, typ OrderType, side Side, price, quantity int64) (*Order, error) {
	if typ == OrderTypeMarket {
		return nil, ErrMarketOrderHasPrice
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Order{
		ID:                id,
		Type:              typ,
		Side:              side,
		Price:             price,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		CreatedAt:         time.Now(),
	}, nil
}

// NewMarketOrder constructs a market order. It carries no price until the
// book reprices it at admission time.
func NewMarketOrder(id string, side Side, quantity int64) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Order{
		ID:                id,
		Type:              OrderTypeMarket,
		Side:              side,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		CreatedAt:         time.Now(),
	}, nil
}

// FilledQuantity returns how much of the order has executed so far.
func (o *Order) FilledQuantity() int64 {
	return o.Quantity - o.RemainingQuantity
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.RemainingQuantity == 0
}

// Fill decrements the remaining quantity by qty. Callers must not fill
// more than RemainingQuantity.
func (o *Order) Fill(qty int64) {
	o.RemainingQuantity -= qty
}

// ToGoodTillCancel rewrites a market order into a good_till_cancel order
// at the given price. This is the only legal mutation of an order's type
// and price, and it happens once, before the order is inserted anywhere.
func (o *Order) ToGoodTillCancel(price int64) {
	o.Type = OrderTypeGoodTillCancel
	o.Price = price
}

// OrderModify carries the new terms for an existing order. Applying it
// cancels the original and re-admits a fresh order with the original
// type, so price-time priority is reset.
type OrderModify struct {
	ID       string
	Side     Side
	Price    int64
	Quantity int64
}

// ToOrder builds the replacement order carrying the original type.
func (m OrderModify) ToOrder(typ OrderType) (*Order, error) {
	if typ == OrderTypeMarket {
		return NewMarketOrder(m.ID, m.Side, m.Quantity)
	}
	return NewOrder(m.ID, typ, m.Side, m.Price, m.Quantity)
}
