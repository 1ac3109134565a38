// Package overlay implements the zone-partitioning, adjacency, and routing
// engine of a Content-Addressable Network simulator: a structured overlay
// that divides the unit square into disjoint rectangular zones, one per
// node, and routes key lookups to the zone containing the key's
// hash-derived coordinate.
//
// # Architecture
//
//	┌───────────────────────────────────────────┐
//	│                  Overlay                  │
//	├───────────────────────────────────────────┤
//	│  Mapper:    key → SHA-256 → (x,y)         │
//	│  zones:     map[NodeID] → Zone            │
//	│  allocator: monotonic NodeIDs             │
//	├───────────────────────────────────────────┤
//	│  "alice" → (0.41, 0.88) → N03 → "1"       │
//	└───────────────────────────────────────────┘
//
// Each Zone owns an axis-aligned rectangle, a neighbor set, and a key-value
// store (internal/storage). A join splits the rectangle owning the join
// point along its longer side; a leave merges the departing zone into a
// neighbor forming an exact rectangular union; a rebalance splits the
// most-loaded zone at its midpoint. After every topology change the engine
// migrates displaced keys and rebuilds the adjacency graph from scratch.
//
// # Invariants
//
// Every reachable state satisfies:
//
//   - Partition: zone rectangles cover [0,1)x[0,1) exactly, with no overlap
//     and at least one zone always present.
//   - Residency: each stored key lives in the zone whose rectangle contains
//     its mapped point; topology changes redistribute keys but never lose
//     or duplicate them.
//   - Symmetry: A lists B as a neighbor iff B lists A, and the relation
//     means "rectangles share a boundary segment of positive length" -
//     corner contact does not qualify.
//
// # Routing
//
// Route performs greedy descent over the adjacency graph: hop to the
// neighbor whose rectangle center most reduces the distance to the target,
// until the current zone contains it. When no neighbor strictly improves
// the distance the router force-jumps to the true owner; see Route for why
// that fallback is preserved deliberately.
//
// # Determinism
//
// Wherever selection falls to "first found in iteration order", the engine
// iterates in sorted-ID order. Go map iteration is randomized,
// so sorted order is what makes leave-merge selection, routing tie-breaks,
// and the OwnerOf fallback reproducible across runs. Randomness (the join
// point) is always supplied by the caller, never drawn internally.
//
// # Scaling limits
//
// OwnerOf is a linear scan and the adjacency rebuild is a full O(n^2)
// pairwise pass. Both are fine for the tens of zones this simulator
// targets; an internet-scale overlay would shard ownership through a tree
// index and patch adjacency incrementally. Single-writer only - wrap the
// overlay in a lock (as cmd/canopyd does) before sharing it.
package overlay
