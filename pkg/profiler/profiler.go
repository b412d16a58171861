// Package profiler records how long each stage of a classifier run takes.
package profiler

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Stage names used by the CLI
const (
	StageLoad      = "load"
	StageVectorize = "vectorize"
	StageFit       = "fit"
	StagePredict   = "predict"
	StageSave      = "save"
)

// Profiler collects durations per stage
type Profiler struct {
	mu     sync.Mutex
	order  []string
	timing map[string][]time.Duration
}

// New creates an empty profiler
func New() *Profiler {
	return &Profiler{timing: make(map[string][]time.Duration)}
}

// Timer measures a single run of a stage
type Timer struct {
	p     *Profiler
	stage string
	start time.Time
}

// Start begins timing stage. A nil profiler hands out timers that record nothing.
func (p *Profiler) Start(stage string) *Timer {
	return &Timer{p: p, stage: stage, start: time.Now()}
}

// Stop records the elapsed time and returns it
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.p.Record(t.stage, elapsed)
	return elapsed
}

// Record adds a measured duration for stage
func (p *Profiler) Record(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.timing[stage]; !ok {
		p.order = append(p.order, stage)
	}
	p.timing[stage] = append(p.timing[stage], d)
}

// Time runs fn as stage and returns its error
func (p *Profiler) Time(stage string, fn func() error) error {
	timer := p.Start(stage)
	defer timer.Stop()
	return fn()
}

// Stats summarises the runs of one stage
type Stats struct {
	Stage   string
	Count   int
	Total   time.Duration
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
	Median  time.Duration
}

// Stats returns the summary for stage; Count is zero when it never ran
func (p *Profiler) Stats(stage string) Stats {
	if p == nil {
		return Stats{Stage: stage}
	}
	p.mu.Lock()
	runs := append([]time.Duration(nil), p.timing[stage]...)
	p.mu.Unlock()

	s := Stats{Stage: stage, Count: len(runs)}
	if len(runs) == 0 {
		return s
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i] < runs[j] })
	for _, d := range runs {
		s.Total += d
	}
	s.Average = s.Total / time.Duration(len(runs))
	s.Min = runs[0]
	s.Max = runs[len(runs)-1]
	if mid := len(runs) / 2; len(runs)%2 == 1 {
		s.Median = runs[mid]
	} else {
		s.Median = (runs[mid-1] + runs[mid]) / 2
	}
	return s
}

// All returns the stats of every stage in the order stages first ran
func (p *Profiler) All() []Stats {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	stages := append([]string(nil), p.order...)
	p.mu.Unlock()

	all := make([]Stats, 0, len(stages))
	for _, stage := range stages {
		all = append(all, p.Stats(stage))
	}
	return all
}

// Reset drops every recorded duration
func (p *Profiler) Reset() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = nil
	p.timing = make(map[string][]time.Duration)
}

// Report writes a table of stage timings to w
func (p *Profiler) Report(w io.Writer) {
	all := p.All()
	if len(all) == 0 {
		fmt.Fprintln(w, "No timing data available")
		return
	}

	fmt.Fprintf(w, "⏱️  Stage timings\n")
	fmt.Fprintf(w, "%-12s %6s %10s %10s %10s %10s %10s\n",
		"Stage", "Count", "Total", "Avg", "Min", "Max", "Median")
	fmt.Fprintln(w, strings.Repeat("─", 74))
	for _, s := range all {
		fmt.Fprintf(w, "%-12s %6d %10s %10s %10s %10s %10s\n",
			truncate(s.Stage, 12), s.Count,
			formatDuration(s.Total), formatDuration(s.Average),
			formatDuration(s.Min), formatDuration(s.Max), formatDuration(s.Median))
	}
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
