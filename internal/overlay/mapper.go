package overlay

import (
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/dreamware/canopy/internal/geometry"
)

// Mapper deterministically maps a key string to a point in the unit square.
// The point is derived from SHA-256 of salt+key: the first and second 8-byte
// halves of the digest are normalized independently to [0,1). Same key and
// salt always yield the same point; distinct keys land at effectively
// independent uniform points.
type Mapper struct {
	salt string
}

// NewMapper creates a mapper with the given salt.
func NewMapper(salt string) Mapper {
	return Mapper{salt: salt}
}

// Point returns the coordinate for key.
func (m Mapper) Point(key string) geometry.Point {
	sum := sha256.Sum256([]byte(m.salt + key))
	return geometry.Point{
		X: normalize(binary.BigEndian.Uint64(sum[0:8])),
		Y: normalize(binary.BigEndian.Uint64(sum[8:16])),
	}
}

// normalize maps a 64-bit integer onto [0,1). Values large enough to round
// to exactly 1.0 are nudged down to the largest float below it, keeping the
// half-open interval intact.
func normalize(u uint64) float64 {
	f := float64(u) / (1 << 64)
	if f >= 1.0 {
		f = math.Nextafter(1.0, 0)
	}
	return f
}
