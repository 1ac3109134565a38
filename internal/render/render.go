// Package render draws coarse textual views of an overlay's partition and
// of lookup paths. It consumes only the engine's OwnerOf surface and holds
// no state of its own.
package render

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"

	"github.com/dreamware/canopy/internal/geometry"
	"github.com/dreamware/canopy/internal/overlay"
)

// sampleNudge pushes grid sample points just inside cell corners so they
// never land exactly on a zone boundary.
const sampleNudge = 1e-6

// Renderer draws an overlay onto a text grid of Cols x Rows cells. Each
// cell shows the two-character suffix of the zone owning the cell's sample
// point; rows run top to bottom from y=1 to y=0.
type Renderer struct {
	Cols int
	Rows int
}

// New returns a renderer with the given grid size.
func New(cols, rows int) Renderer {
	return Renderer{Cols: cols, Rows: rows}
}

// Map writes the partition view of o to w.
func (r Renderer) Map(o *overlay.Overlay, w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Partition map (rows top to bottom are y=1 to y=0):"); err != nil {
		return err
	}
	if err := r.writeGrid(o, nil, nil, w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "Legend: cells show node ID suffix (01 = N01)")
	return err
}

// MapWithPath writes the partition view with the zones on path bracketed
// and the target point marked TT.
func (r Renderer) MapWithPath(o *overlay.Overlay, path []overlay.NodeID, target geometry.Point, w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Lookup view ([..] = zone on path, TT = target point):"); err != nil {
		return err
	}
	if err := r.writeGrid(o, path, &target, w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "Legend: cells show node ID suffix; [..] marks a visited zone")
	return err
}

// writeGrid samples the owner of each cell and writes the grid. When target
// is non-nil its cell is overwritten with the TT marker.
func (r Renderer) writeGrid(o *overlay.Overlay, path []overlay.NodeID, target *geometry.Point, w io.Writer) error {
	var tCol, tRow int
	if target != nil {
		tCol = clampInt(int(target.X*float64(r.Cols)), 0, r.Cols-1)
		tRow = clampInt(r.Rows-1-int(target.Y*float64(r.Rows)), 0, r.Rows-1)
	}

	for row := 0; row < r.Rows; row++ {
		y := float64(r.Rows-1-row)/float64(r.Rows) + sampleNudge
		for col := 0; col < r.Cols; col++ {
			x := float64(col)/float64(r.Cols) + sampleNudge

			owner := o.OwnerOf(geometry.Point{X: x, Y: y})
			cell := suffix(owner)
			if slices.Contains(path, owner) {
				cell = "[" + cell + "]"
			}
			if target != nil && row == tRow && col == tCol {
				cell = "TT"
			}

			if col > 0 {
				if _, err := io.WriteString(w, " "); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, cell); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// suffix returns the last two characters of a zone ID.
func suffix(id overlay.NodeID) string {
	s := string(id)
	if len(s) <= 2 {
		return s
	}
	return s[len(s)-2:]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
