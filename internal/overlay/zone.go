package overlay

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/dreamware/canopy/internal/geometry"
	"github.com/dreamware/canopy/internal/storage"
)

// NodeID identifies a zone in the overlay.
// IDs are monotonically allocated and never reused.
type NodeID string

// IDAllocator hands out NodeIDs in ascending order. Each overlay owns its
// allocator; there is no process-global counter.
type IDAllocator struct {
	next int
}

// NewIDAllocator creates an allocator whose first ID is N01.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns a fresh NodeID.
func (a *IDAllocator) Next() NodeID {
	id := NodeID(fmt.Sprintf("N%02d", a.next))
	a.next++
	return id
}

// Zone is a rectangular region of the coordinate space owned by one node.
// It holds the keys whose hash-derived points fall inside its rectangle and
// the set of zones it shares a boundary segment with.
type Zone struct {
	ID        NodeID              // Unique zone identifier
	Rect      geometry.Rect       // The territory this zone owns
	Neighbors map[NodeID]struct{} // Zones sharing a boundary segment
	Store     storage.Store       // Keys resident in this zone
}

// newZone creates a zone with an empty neighbor set and in-memory storage.
func newZone(id NodeID, r geometry.Rect) *Zone {
	return &Zone{
		ID:        id,
		Rect:      r,
		Neighbors: make(map[NodeID]struct{}),
		Store:     storage.NewMemoryStore(),
	}
}

// NeighborIDs returns the zone's neighbors in sorted order.
// Sorted iteration keeps leave-merge target selection and routing tie-breaks
// deterministic across runs.
func (z *Zone) NeighborIDs() []NodeID {
	ids := make([]NodeID, 0, len(z.Neighbors))
	for id := range z.Neighbors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
