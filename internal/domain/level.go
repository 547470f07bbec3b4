package domain

// LevelInfo is a snapshot row for one price level: the price, the resting
// quantity summed across the level's orders, and how many orders rest
// there. Snapshots are ordered best-first per side.
type LevelInfo struct {
	Price      int64 // cents
	Quantity   int64
	OrderCount int
}
