// Package api defines the JSON types exchanged over the daemon's HTTP
// surface, plus a Client that drives a running daemon through it.
package api

import (
	"github.com/dreamware/canopy/internal/overlay"
)

// JoinResponse reports the zone created by a join.
type JoinResponse struct {
	ID    overlay.NodeID `json:"id"`
	Zones int            `json:"zones"`
}

// LeaveRequest names the zone to remove.
type LeaveRequest struct {
	ID overlay.NodeID `json:"id"`
}

// PutRequest stores a key/value pair.
type PutRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PutResponse reports where the key landed.
type PutResponse struct {
	Owner overlay.NodeID `json:"owner"`
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
}

// GetResponse carries a lookup result: the value when found, and the
// routing path, owning zone, and mapped point either way.
type GetResponse struct {
	Value string           `json:"value,omitempty"`
	Found bool             `json:"found"`
	Path  []overlay.NodeID `json:"path"`
	Owner overlay.NodeID   `json:"owner"`
	X     float64          `json:"x"`
	Y     float64          `json:"y"`
}

// RebalanceResponse reports the zone created by a rebalance, if any.
type RebalanceResponse struct {
	ID    overlay.NodeID `json:"id,omitempty"`
	Split bool           `json:"split"`
}

// StatsResponse lists per-zone statistics.
type StatsResponse struct {
	Zones []overlay.ZoneStat `json:"zones"`
}
