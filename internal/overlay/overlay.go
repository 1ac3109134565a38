package overlay

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/dreamware/canopy/internal/geometry"
)

// ErrUnknownZone is returned when an operation names a zone that doesn't exist.
var ErrUnknownZone = errors.New("unknown zone")

// ErrLastZone is returned when a leave would remove the only remaining zone.
// The overlay always retains at least one zone covering the space.
var ErrLastZone = errors.New("cannot remove the last zone")

// ErrBlockedMerge is returned when a leaving zone has no neighbor whose
// rectangle forms an exact rectangular union with its own. The overlay never
// produces irregular shapes, so such a zone cannot depart; its state is left
// unchanged.
var ErrBlockedMerge = errors.New("no neighbor forms a rectangular merge")

// splitClamp keeps split cuts strictly inside the rectangle so both halves
// retain positive area.
const splitClamp = 1e-9

// Overlay is the complete set of zones partitioning the unit square
// [0,1)x[0,1). It owns the key-to-point mapper and the ID allocator, and it
// maintains three invariants across every operation:
//
//   - the zone rectangles exactly partition the unit square,
//   - every stored key resides in the zone containing its mapped point,
//   - the neighbor relation is symmetric and means "shares a boundary
//     segment of positive length".
//
// All methods assume a single writer; see cmd/canopyd for the serving layer
// that serializes access.
type Overlay struct {
	zones  map[NodeID]*Zone
	mapper Mapper
	alloc  *IDAllocator
}

// New creates an overlay with a single zone covering the whole space.
func New(salt string) *Overlay {
	o := &Overlay{
		zones:  make(map[NodeID]*Zone),
		mapper: NewMapper(salt),
		alloc:  NewIDAllocator(),
	}
	id := o.alloc.Next()
	o.zones[id] = newZone(id, geometry.Rect{XMin: 0, XMax: 1, YMin: 0, YMax: 1})
	o.rebuildNeighbors()
	return o
}

// Len returns the number of zones.
func (o *Overlay) Len() int {
	return len(o.zones)
}

// IDs returns all zone identifiers in sorted order.
func (o *Overlay) IDs() []NodeID {
	ids := make([]NodeID, 0, len(o.zones))
	for id := range o.zones {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Rect returns the rectangle owned by id.
func (o *Overlay) Rect(id NodeID) (geometry.Rect, bool) {
	z, ok := o.zones[id]
	if !ok {
		return geometry.Rect{}, false
	}
	return z.Rect, true
}

// Neighbors returns id's neighbor set in sorted order.
func (o *Overlay) Neighbors(id NodeID) ([]NodeID, bool) {
	z, ok := o.zones[id]
	if !ok {
		return nil, false
	}
	return z.NeighborIDs(), true
}

// MapKey returns the coordinate the overlay's mapper assigns to key.
func (o *Overlay) MapKey(key string) geometry.Point {
	return o.mapper.Point(key)
}

// OwnerOf returns the zone whose rectangle contains p. The rectangles
// partition the space, so exactly one zone qualifies; if floating-point
// roundoff ever leaves no match, the zone whose center is nearest p is
// returned instead. That fallback indicates a partition violation and is
// exercised by tests, but it never surfaces as an error.
func (o *Overlay) OwnerOf(p geometry.Point) NodeID {
	for _, id := range o.IDs() {
		if o.zones[id].Rect.Contains(p) {
			return id
		}
	}
	return o.nearestCenter(p)
}

// nearestCenter returns the zone whose rectangle center is closest to p,
// ties broken by the first zone in sorted-ID order.
func (o *Overlay) nearestCenter(p geometry.Point) NodeID {
	var best NodeID
	bestDist := -1.0
	for _, id := range o.IDs() {
		d := geometry.Dist(o.zones[id].Rect.Center(), p)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = id
		}
	}
	return best
}

// Join carves a new zone out of the zone owning p, modeling a peer that
// joins at p and takes over half of its host's territory. The host splits
// along its longer side (ties split on the x axis) at p's coordinate,
// clamped so both halves keep positive area; the half containing p becomes
// the new zone. Keys are migrated and adjacency rebuilt before returning
// the new zone's ID.
//
// The caller supplies the point: executables draw it from a seeded RNG,
// tests inject fixed coordinates.
func (o *Overlay) Join(p geometry.Point) NodeID {
	host := o.zones[o.OwnerOf(p)]
	newID := o.alloc.Next()

	keep, carved := splitAt(host.Rect, p)
	host.Rect = keep
	nz := newZone(newID, carved)
	o.zones[newID] = nz

	o.migrateKeys(host, nz)
	o.rebuildNeighbors()
	return newID
}

// splitAt cuts r at p along its longer side and returns the half the host
// keeps and the half carved out for the new zone. The carved half is the
// one containing p.
func splitAt(r geometry.Rect, p geometry.Point) (keep, carved geometry.Rect) {
	if r.Width() >= r.Height() {
		cut := clamp(p.X, r.XMin+splitClamp, r.XMax-splitClamp)
		left := geometry.Rect{XMin: r.XMin, XMax: cut, YMin: r.YMin, YMax: r.YMax}
		right := geometry.Rect{XMin: cut, XMax: r.XMax, YMin: r.YMin, YMax: r.YMax}
		if right.Contains(p) {
			return left, right
		}
		return right, left
	}
	cut := clamp(p.Y, r.YMin+splitClamp, r.YMax-splitClamp)
	bottom := geometry.Rect{XMin: r.XMin, XMax: r.XMax, YMin: r.YMin, YMax: cut}
	top := geometry.Rect{XMin: r.XMin, XMax: r.XMax, YMin: cut, YMax: r.YMax}
	if top.Contains(p) {
		return bottom, top
	}
	return top, bottom
}

// clamp assumes lo <= hi, which holds while the split side is wider than
// 2*splitClamp; a zone that narrow would need repeated edge-hugging joins
// landing inside the same sliver.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Leave removes zone id, handing its territory and keys to a neighbor whose
// rectangle forms an exact rectangular union with the victim's. Neighbors
// are scanned in sorted-ID order and the first match wins.
//
// The merge is deliberately two-way only: a zone may depart only if its hole
// heals into a perfect rectangle with a single neighbor, never producing
// irregular shapes. A BlockedMerge therefore signals a topology this rule
// cannot heal (for example a zone with only corner-touching candidates), and
// the overlay is left unchanged.
func (o *Overlay) Leave(id NodeID) error {
	victim, ok := o.zones[id]
	if !ok {
		return fmt.Errorf("leave %s: %w", id, ErrUnknownZone)
	}
	if len(o.zones) == 1 {
		return fmt.Errorf("leave %s: %w", id, ErrLastZone)
	}

	for _, nid := range victim.NeighborIDs() {
		target := o.zones[nid]
		merged, ok := geometry.UnionRect(victim.Rect, target.Rect)
		if !ok {
			continue
		}
		// Target absorbs the victim's keys and territory.
		for _, k := range victim.Store.Keys() {
			v, err := victim.Store.Get(k)
			if err != nil {
				continue
			}
			target.Store.Put(k, v)
		}
		target.Rect = merged
		delete(o.zones, id)
		o.rebuildNeighbors()
		return nil
	}
	return fmt.Errorf("leave %s: %w", id, ErrBlockedMerge)
}

// Put stores key=value at the zone owning the key's mapped point, returning
// that zone's ID and the point.
func (o *Overlay) Put(key, value string) (NodeID, geometry.Point) {
	p := o.mapper.Point(key)
	owner := o.OwnerOf(p)
	o.zones[owner].Store.Put(key, value)
	return owner, p
}

// Lookup is the result of a Get: the routing path taken, the owning zone,
// the key's mapped point, and the value when the owner holds one.
type Lookup struct {
	Value string
	Path  []NodeID
	Owner NodeID
	Point geometry.Point
}

// Get routes to the zone owning key's point and retrieves the value. On a
// miss the returned error is storage.ErrKeyNotFound and the Lookup still
// carries the path, owner, and point.
func (o *Overlay) Get(key string) (Lookup, error) {
	p := o.mapper.Point(key)
	path := o.Route(p, "")
	owner := path[len(path)-1]

	l := Lookup{Path: path, Owner: owner, Point: p}
	v, err := o.zones[owner].Store.Get(key)
	if err != nil {
		return l, err
	}
	l.Value = v
	return l, nil
}

// RebalanceHeaviest splits the zone holding the most keys (ties broken by
// sorted-ID order) at the exact midpoint of its longer side. When every zone
// is empty and more than one exists there is nothing to spread, and the
// rebalance is a no-op returning ok=false. Mechanics otherwise match Join.
func (o *Overlay) RebalanceHeaviest() (NodeID, bool) {
	var heaviest NodeID
	max := -1
	for _, id := range o.IDs() {
		if n := o.zones[id].Store.Len(); n > max {
			max = n
			heaviest = id
		}
	}
	if max == 0 && len(o.zones) > 1 {
		return "", false
	}

	host := o.zones[heaviest]
	newID := o.alloc.Next()

	keep, carved := splitAtMidpoint(host.Rect)
	host.Rect = keep
	nz := newZone(newID, carved)
	o.zones[newID] = nz

	o.migrateKeys(host, nz)
	o.rebuildNeighbors()
	return newID, true
}

// splitAtMidpoint halves r along its longer side. The host keeps the
// left/bottom half; the right/top half is carved off.
func splitAtMidpoint(r geometry.Rect) (keep, carved geometry.Rect) {
	if r.Width() >= r.Height() {
		cut := (r.XMin + r.XMax) / 2
		return geometry.Rect{XMin: r.XMin, XMax: cut, YMin: r.YMin, YMax: r.YMax},
			geometry.Rect{XMin: cut, XMax: r.XMax, YMin: r.YMin, YMax: r.YMax}
	}
	cut := (r.YMin + r.YMax) / 2
	return geometry.Rect{XMin: r.XMin, XMax: r.XMax, YMin: r.YMin, YMax: cut},
		geometry.Rect{XMin: r.XMin, XMax: r.XMax, YMin: cut, YMax: r.YMax}
}

// ZoneStat is one row of the per-zone statistics report.
type ZoneStat struct {
	ID   NodeID  `json:"id"`
	Area float64 `json:"area"`
	Keys int     `json:"keys"`
}

// Stats returns (id, area, key count) for every zone, sorted by ID.
func (o *Overlay) Stats() []ZoneStat {
	stats := make([]ZoneStat, 0, len(o.zones))
	for _, id := range o.IDs() {
		z := o.zones[id]
		stats = append(stats, ZoneStat{ID: id, Area: z.Rect.Area(), Keys: z.Store.Len()})
	}
	return stats
}

// migrateKeys re-evaluates every key stored at src and moves the ones whose
// points now fall inside dst's rectangle. Lossless and idempotent: each key
// ends up in exactly one zone, the one containing its point.
func (o *Overlay) migrateKeys(src, dst *Zone) {
	for _, k := range src.Store.Keys() {
		if !dst.Rect.Contains(o.mapper.Point(k)) {
			continue
		}
		v, err := src.Store.Get(k)
		if err != nil {
			continue
		}
		dst.Store.Put(k, v)
		src.Store.Delete(k)
	}
}

// rebuildNeighbors recomputes the whole adjacency graph with a pairwise
// boundary-sharing scan. O(n^2), rebuilt after every topology change;
// acceptable because topology changes are rare relative to lookups at the
// node counts this simulator targets.
func (o *Overlay) rebuildNeighbors() {
	ids := o.IDs()
	for _, id := range ids {
		clear(o.zones[id].Neighbors)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := o.zones[ids[i]], o.zones[ids[j]]
			if geometry.ShareBoundary(a.Rect, b.Rect) {
				a.Neighbors[b.ID] = struct{}{}
				b.Neighbors[a.ID] = struct{}{}
			}
		}
	}
}
