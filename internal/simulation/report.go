package simulation

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ajitpratap0/prefabpool/pkg/pool"
)

// Report summarises a Run.
type Report struct {
	Scene       string           `json:"scene"`
	Frames      int              `json:"frames"`
	Duration    time.Duration    `json:"duration_ns"`
	Spawned     int64            `json:"spawned"`
	Reused      int64            `json:"reused"`
	Constructed int64            `json:"constructed"`
	Recycled    int64            `json:"recycled"`
	Destroyed   int64            `json:"destroyed"`
	InFlight    int              `json:"in_flight"`
	PeakActive  int              `json:"peak_active"`
	Pools       []pool.PoolStats `json:"pools"`
	Memory      MemoryUsage      `json:"memory"`
}

// ReuseRate is the share of spawns served from a pool.
func (r *Report) ReuseRate() float64 {
	if r.Spawned == 0 {
		return 0
	}
	return float64(r.Reused) / float64(r.Spawned)
}

// WriteText renders the report as an aligned table.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "scene\t%s\n", r.Scene)
	fmt.Fprintf(tw, "frames\t%d\n", r.Frames)
	fmt.Fprintf(tw, "duration\t%s\n", r.Duration)
	fmt.Fprintf(tw, "spawned\t%d\n", r.Spawned)
	fmt.Fprintf(tw, "reused\t%d (%.1f%%)\n", r.Reused, 100*r.ReuseRate())
	fmt.Fprintf(tw, "constructed\t%d\n", r.Constructed)
	fmt.Fprintf(tw, "recycled\t%d\n", r.Recycled)
	fmt.Fprintf(tw, "destroyed\t%d\n", r.Destroyed)
	fmt.Fprintf(tw, "in flight\t%d\n", r.InFlight)
	fmt.Fprintf(tw, "peak active\t%d\n", r.PeakActive)
	fmt.Fprintf(tw, "heap\t%d bytes, %d objects\n", r.Memory.HeapAllocBytes, r.Memory.HeapObjects)
	fmt.Fprintf(tw, "rss\t%d bytes\n", r.Memory.RSSBytes)
	if err := tw.Flush(); err != nil {
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nPREFAB\tAVAILABLE\tIN USE\tCONSTRUCTED\tHITS\tMISSES\tDESTROYED\tMAX")
	for _, p := range r.Pools {
		limit := "-"
		if p.MaxSize > 0 {
			limit = fmt.Sprint(p.MaxSize)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			p.Prefab, p.Available, p.InUse, p.Constructed, p.Hits, p.Misses, p.Destroyed, limit)
	}
	return tw.Flush()
}

func (s *Simulation) report(before pool.PoolStats, recycledBefore int64, frames int, d time.Duration) (*Report, error) {
	after, err := s.registry.Stats(s.bullet)
	if err != nil {
		return nil, err
	}
	return &Report{
		Scene:       s.scene.Name(),
		Frames:      frames,
		Duration:    d,
		Spawned:     (after.Hits + after.Misses) - (before.Hits + before.Misses),
		Reused:      after.Hits - before.Hits,
		Constructed: after.Constructed - before.Constructed,
		Recycled:    s.recycled - recycledBefore,
		Destroyed:   after.Destroyed - before.Destroyed,
		InFlight:    len(s.live),
		PeakActive:  s.peak,
		Pools:       s.registry.Snapshot(),
		Memory:      s.monitor.sample(),
	}, nil
}
