package domain

import "time"

// TradeLeg is one counterparty's view of a matched execution. The price
// recorded is that order's own resting price, not a single clearing price.
type TradeLeg struct {
	OrderID  string
	Price    int64 // cents
	Quantity int64
}

// Trade is an immutable record of one matched quantity between a bid and
// an ask. The book keeps no trade history; records are handed to the
// caller of AddOrder/ModifyOrder and forgotten.
type Trade struct {
	TradeID    string
	Bid        TradeLeg
	Ask        TradeLeg
	ExecutedAt time.Time
}
