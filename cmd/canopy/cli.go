package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/dreamware/canopy/internal/geometry"
	"github.com/dreamware/canopy/internal/overlay"
	"github.com/dreamware/canopy/internal/render"
	"github.com/dreamware/canopy/internal/storage"
)

// CLI is a thin command layer over an overlay. It does not own the overlay;
// it only issues commands to it and prints the results.
type CLI struct {
	o        *overlay.Overlay
	renderer render.Renderer
	rng      *rand.Rand
	in       io.Reader
	out      io.Writer
}

// NewCLI constructs a CLI over the provided overlay. The RNG supplies join
// points; seed it for reproducible sessions.
func NewCLI(o *overlay.Overlay, renderer render.Renderer, rng *rand.Rand, in io.Reader, out io.Writer) *CLI {
	return &CLI{o: o, renderer: renderer, rng: rng, in: in, out: out}
}

// Run starts a REPL on the input stream until EOF or "exit".
func (c *CLI) Run() error {
	fmt.Fprintln(c.out, "canopy - CAN overlay simulator (type 'help' for commands)")
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		if err := c.RunLine(sc.Text()); err == io.EOF {
			return nil
		}
	}
	return sc.Err()
}

// RunLine executes a single command line. Commands:
//
//	add                   add a zone at a random point
//	del <id>              remove a zone (merge into a neighbor)
//	put <key> <value>     store a key/value pair
//	get <key>             route to the key and show the lookup view
//	map                   show the partition map
//	stats                 per-zone id | area | keys report
//	rebalance             split the zone holding the most keys
//	help                  list commands
//	exit                  quit
//
// Errors are printed to the output stream and returned.
func (c *CLI) RunLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "add":
		p := geometry.Point{X: c.rng.Float64(), Y: c.rng.Float64()}
		id := c.o.Join(p)
		fmt.Fprintf(c.out, "added zone %s at (%.3f, %.3f); %d zones\n", id, p.X, p.Y, c.o.Len())
		return nil

	case "del":
		if len(args) != 1 {
			fmt.Fprintln(c.out, "usage: del <id>")
			return errors.New("del: missing id")
		}
		id := overlay.NodeID(strings.ToUpper(args[0]))
		if err := c.o.Leave(id); err != nil {
			switch {
			case errors.Is(err, overlay.ErrBlockedMerge):
				fmt.Fprintf(c.out, "delete blocked: no rectangular-merge neighbor for %s; try another zone\n", id)
			case errors.Is(err, overlay.ErrLastZone):
				fmt.Fprintln(c.out, "cannot delete the only zone")
			case errors.Is(err, overlay.ErrUnknownZone):
				fmt.Fprintf(c.out, "no such zone %s (known: %s)\n", id, joinIDs(c.o.IDs()))
			default:
				fmt.Fprintf(c.out, "delete failed: %v\n", err)
			}
			return err
		}
		fmt.Fprintf(c.out, "deleted zone %s; %d zones\n", id, c.o.Len())
		return nil

	case "put":
		if len(args) < 2 {
			fmt.Fprintln(c.out, "usage: put <key> <value>")
			return errors.New("put: missing key or value")
		}
		key, value := args[0], strings.Join(args[1:], " ")
		owner, p := c.o.Put(key, value)
		fmt.Fprintf(c.out, "put %q at (%.3f, %.3f) -> owner %s\n", key, p.X, p.Y, owner)
		return nil

	case "get":
		if len(args) != 1 {
			fmt.Fprintln(c.out, "usage: get <key>")
			return errors.New("get: missing key")
		}
		key := args[0]
		lookup, err := c.o.Get(key)
		fmt.Fprintf(c.out, "get %q -> (%.3f, %.3f) | path %s | owner %s\n",
			key, lookup.Point.X, lookup.Point.Y, joinIDs(lookup.Path), lookup.Owner)
		if err != nil {
			if errors.Is(err, storage.ErrKeyNotFound) {
				fmt.Fprintln(c.out, "result: NOT FOUND")
			} else {
				fmt.Fprintf(c.out, "get failed: %v\n", err)
				return err
			}
		} else {
			fmt.Fprintf(c.out, "result: %s\n", lookup.Value)
		}
		return c.renderer.MapWithPath(c.o, lookup.Path, lookup.Point, c.out)

	case "map":
		return c.renderer.Map(c.o, c.out)

	case "stats":
		fmt.Fprintln(c.out, "per-zone stats (id | area | keys):")
		for _, s := range c.o.Stats() {
			fmt.Fprintf(c.out, "  %s | %.3f | %d\n", s.ID, s.Area, s.Keys)
		}
		return nil

	case "rebalance":
		id, ok := c.o.RebalanceHeaviest()
		if !ok {
			fmt.Fprintln(c.out, "rebalance skipped: all zones empty")
			return nil
		}
		fmt.Fprintf(c.out, "rebalanced: split heaviest zone, added %s\n", id)
		return nil

	case "help":
		fmt.Fprint(c.out, `commands:
  add                 add a zone at a random point
  del <id>            remove a zone (merge into a neighbor)
  put <key> <value>   store a key/value pair
  get <key>           route to the key and show the lookup view
  map                 show the partition map
  stats               per-zone id | area | keys report
  rebalance           split the zone holding the most keys
  exit                quit
`)
		return nil

	case "exit", "quit":
		fmt.Fprintln(c.out, "goodbye")
		return io.EOF

	default:
		fmt.Fprintf(c.out, "unknown command %q (try 'help')\n", cmd)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// joinIDs formats a path or ID list as "N01 -> N02".
func joinIDs(ids []overlay.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, " -> ")
}
