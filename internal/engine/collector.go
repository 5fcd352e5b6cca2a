package engine

import (
	"sort"
	"sync"

	"github.com/poltergeist/mlfq/pkg/kernel"
	"github.com/poltergeist/mlfq/pkg/tracing"
	"github.com/poltergeist/mlfq/pkg/types"
)

// collector is the kernel event sink of one run. Emit runs with kernel
// locks held, so it only records.
type collector struct {
	span *tracing.Span

	mu        sync.Mutex
	jobs      map[int]string
	parents   map[int]int
	exits     []kernel.Event
	demotions map[int]int
	boosts    int
	kills     int
}

func newCollector(span *tracing.Span) *collector {
	return &collector{
		span:      span,
		jobs:      make(map[int]string),
		parents:   make(map[int]int),
		demotions: make(map[int]int),
	}
}

func (c *collector) Emit(e kernel.Event) {
	c.mu.Lock()
	switch e.Kind {
	case kernel.EventFork:
		c.parents[e.PID] = e.Parent
	case kernel.EventExit:
		if e.Info != nil {
			c.exits = append(c.exits, e)
		}
	case kernel.EventDemote:
		c.demotions[e.PID]++
	case kernel.EventBoost:
		c.boosts++
	case kernel.EventKill:
		c.kills++
	}
	c.mu.Unlock()

	c.span.AddEvent(string(e.Kind), map[string]int64{
		"pid":    int64(e.PID),
		"tick":   int64(e.Tick),
		"level":  int64(e.Level),
		"status": int64(e.Status),
	})
}

// assign records that pid was forked by init for job.
func (c *collector) assign(pid int, job string) {
	c.mu.Lock()
	c.jobs[pid] = job
	c.mu.Unlock()
}

// jobOf follows fork parents up to the process init forked. c.mu must be
// held.
func (c *collector) jobOf(pid int) string {
	for hops := 0; hops <= len(c.parents); hops++ {
		if job, ok := c.jobs[pid]; ok {
			return job
		}
		parent, ok := c.parents[pid]
		if !ok {
			break
		}
		pid = parent
	}
	return ""
}

// results returns one entry per exited process, in pid order.
func (c *collector) results() []types.JobResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]types.JobResult, 0, len(c.exits))
	for _, e := range c.exits {
		info := e.Info
		out = append(out, types.JobResult{
			Job:        c.jobOf(e.PID),
			PID:        e.PID,
			Parent:     e.Parent,
			Name:       info.Name,
			ExitStatus: e.Status,
			Priority:   info.Priority.String(),
			CPUTicks:   info.CPUTicks,
			Dispatches: info.SchedCount,
			Demotions:  c.demotions[e.PID],
			StartTick:  info.StartTime,
			EndTick:    info.EndTime,
			Turnaround: info.Turnaround(),
			Response:   info.Response(),
			Wait:       info.TotalWait,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

func (c *collector) boostCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boosts
}

// summarize aggregates results per configured job, in configuration order.
func summarize(jobs []types.JobConfig, results []types.JobResult) []types.JobSummary {
	byJob := make(map[string][]types.JobResult)
	for _, r := range results {
		byJob[r.Job] = append(byJob[r.Job], r)
	}

	summary := make([]types.JobSummary, 0, len(jobs))
	for _, j := range jobs {
		rs := byJob[j.Name]
		s := types.JobSummary{Job: j.Name, Kind: string(j.Kind), Processes: len(rs)}
		if len(rs) == 0 {
			summary = append(summary, s)
			continue
		}
		var turnaround, response, wait uint64
		for _, r := range rs {
			turnaround += r.Turnaround
			response += r.Response
			wait += r.Wait
			s.CPUTicks += r.CPUTicks
			s.Demotions += r.Demotions
		}
		n := float64(len(rs))
		s.AvgTurnaround = float64(turnaround) / n
		s.AvgResponse = float64(response) / n
		s.AvgWait = float64(wait) / n
		summary = append(summary, s)
	}
	return summary
}
