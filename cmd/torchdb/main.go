// Command torchdb lists the HaroTorches recorded in a torch store. The store
// is locked while the server runs, so the server must be stopped first.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/harotorch/harotorch/torch"
	"github.com/google/uuid"
)

func main() {
	dir := flag.String("dir", filepath.Join("plugins", "data", "harotorch", "torches"), "torch store directory")
	owner := flag.String("owner", "", "only list torches placed by the player with this UUID")
	flag.Parse()

	if err := run(os.Stdout, *dir, *owner); err != nil {
		fmt.Fprintln(os.Stderr, "torchdb:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, dir, owner string) error {
	var filter uuid.UUID
	if owner != "" {
		id, err := uuid.Parse(owner)
		if err != nil {
			return fmt.Errorf("parse owner: %w", err)
		}
		filter = id
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("torch store: %w", err)
	}
	store, err := torch.OpenStore(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.All()
	if err != nil {
		return err
	}
	if filter != uuid.Nil {
		records = slices.DeleteFunc(records, func(r torch.Record) bool { return r.Owner != filter })
	}
	return list(w, records)
}

// list writes one line per record, oldest first.
func list(w io.Writer, records []torch.Record) error {
	slices.SortStableFunc(records, func(a, b torch.Record) int {
		return a.Placed.Compare(b.Placed)
	})
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "DIMENSION\tPOSITION\tOWNER\tPLACED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d %d %d\t%s\t%s\n", dimensionName(r.Dim), r.Pos[0], r.Pos[1], r.Pos[2], r.Owner, r.Placed.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(tw, "\n%d torch(es)\n", len(records))
	return tw.Flush()
}

func dimensionName(dim world.Dimension) string {
	switch dim {
	case world.Nether:
		return "nether"
	case world.End:
		return "end"
	default:
		return "overworld"
	}
}
