package overlay

import "github.com/dreamware/canopy/internal/geometry"

// routeImprovement is the minimum distance gain a neighbor must offer to be
// taken as the next hop. Guards against oscillating between centers that are
// equidistant up to roundoff.
const routeImprovement = 1e-12

// Route returns the greedy routing path from start to the zone owning p.
// An empty (or unknown) start enters the overlay at the zone whose center is
// nearest p, simulating an arbitrary entry point.
//
// Each hop moves to the neighbor whose center strictly decreases the
// distance to p the most; ties go to the first such neighbor in sorted-ID
// order. If no neighbor improves on the current zone - a local minimum that
// small or irregular topologies can produce - the router jumps directly to
// the true owner and stops. That jump breaks the "path follows real
// adjacency edges" property; it is the documented termination fallback, not
// a bug, and callers (and tests) rely on the resulting path shape. The last
// element of the path always owns p.
func (o *Overlay) Route(p geometry.Point, start NodeID) []NodeID {
	if _, ok := o.zones[start]; !ok {
		start = o.nearestCenter(p)
	}

	path := []NodeID{start}
	for {
		cur := o.zones[path[len(path)-1]]
		if cur.Rect.Contains(p) {
			return path
		}

		bestDist := geometry.Dist(cur.Rect.Center(), p)
		var best NodeID
		for _, nid := range cur.NeighborIDs() {
			d := geometry.Dist(o.zones[nid].Rect.Center(), p)
			if d+routeImprovement < bestDist {
				bestDist = d
				best = nid
			}
		}

		if best == "" {
			// Local minimum: force-jump to the owner to terminate.
			owner := o.OwnerOf(p)
			if owner != cur.ID {
				path = append(path, owner)
			}
			return path
		}
		path = append(path, best)
	}
}
