package network

// EntityKind names an id space. Every kind has its own counter.
type EntityKind string

const (
	KindSKU    EntityKind = "sku"
	KindNode   EntityKind = "node"
	KindDemand EntityKind = "demand"
	KindOrder  EntityKind = "order"
	KindLine   EntityKind = "line"
	KindRecipe EntityKind = "recipe"
)

// Typed identifiers. Zero is never allocated.
type (
	SKUID    int64
	NodeID   int64
	DemandID int64
	OrderID  int64
	LineID   int64
	RecipeID int64
)

// IDAllocator hands out monotonically increasing ids per entity kind.
// Ids are never reused. Each Registry owns its own allocator so independent
// networks (and parallel tests) get independent id spaces.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type IDAllocator struct {
	next map[EntityKind]int64
}

// NewIDAllocator creates an allocator whose first id for every kind is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: make(map[EntityKind]int64)}
}

// Next returns the next id for kind.
func (a *IDAllocator) Next(kind EntityKind) int64 {
	a.next[kind]++
	return a.next[kind]
}

// Peek returns the id that the next call to Next(kind) will return.
func (a *IDAllocator) Peek(kind EntityKind) int64 {
	return a.next[kind] + 1
}
