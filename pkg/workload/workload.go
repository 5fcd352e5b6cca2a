// Package workload builds the user programs a simulation runs: CPU hogs
// that should sink to LOW, interactive jobs that should stay HIGH, and
// mixes of both.
package workload

import (
	"errors"
	"fmt"

	"github.com/poltergeist/mlfq/pkg/kernel"
	"github.com/poltergeist/mlfq/pkg/types"
)

// Console is the file interactive jobs hold open while they run.
const Console = "console"

// Observer is told the caller's accounting after each burst.
type Observer func(job string, burst int, info kernel.ProcInfo)

// Program returns the program of one instance of job. observe may be nil.
func Program(job types.JobConfig, instance int, observe Observer) (kernel.Program, error) {
	w := &worker{job: job, observe: observe}
	name := fmt.Sprintf("%s.%d", job.Name, instance)

	var body func(p *kernel.Process)
	switch job.Kind {
	case types.WorkloadCPU:
		body = w.cpu
	case types.WorkloadIO:
		body = w.io
	case types.WorkloadMixed:
		body = w.mixed
	case types.WorkloadForker:
		body = w.forker
	default:
		return nil, fmt.Errorf("unknown workload kind %q", job.Kind)
	}

	return func(p *kernel.Process) {
		p.SetName(name)
		body(p)
		p.Exit(job.ExitStatus)
	}, nil
}

type worker struct {
	job     types.JobConfig
	observe Observer
}

func (w *worker) report(p *kernel.Process, burst int) {
	if w.observe == nil {
		return
	}
	if info, err := p.ProcInfo(p.PID()); err == nil {
		w.observe(w.job.Name, burst, info)
	}
}

// cpu computes without ever giving the core up voluntarily.
func (w *worker) cpu(p *kernel.Process) {
	for i := 0; i < w.job.GetBursts(); i++ {
		p.Compute(w.job.GetBurstTicks())
		w.report(p, i)
	}
}

// io computes briefly, yields while its slice is fresh, then waits on the
// clock as if blocked on a device.
func (w *worker) io(p *kernel.Process) {
	fd, err := p.Open(Console)
	if err == nil {
		defer p.Close(fd)
	}
	for i := 0; i < w.job.GetBursts(); i++ {
		w.ioBurst(p)
		w.report(p, i)
	}
}

func (w *worker) ioBurst(p *kernel.Process) {
	p.Compute(w.job.GetBurstTicks())
	p.Yield()
	p.Sleep(uint64(w.job.GetSleepTicks()))
}

// mixed alternates a CPU burst with an interactive one.
func (w *worker) mixed(p *kernel.Process) {
	for i := 0; i < w.job.GetBursts(); i++ {
		if i%2 == 0 {
			p.Compute(w.job.GetBurstTicks())
		} else {
			p.Compute(1)
			p.Yield()
			p.Sleep(uint64(w.job.GetSleepTicks()))
		}
		w.report(p, i)
	}
}

// forker spawns short CPU children, each running one burst, and reaps them.
func (w *worker) forker(p *kernel.Process) {
	burst := w.job.GetBurstTicks()
	child := func(c *kernel.Process) {
		c.Compute(burst)
		c.Exit(0)
	}

	forked := 0
	for i := 0; i < w.job.GetChildren(); i++ {
		if _, err := p.Fork(child); err != nil {
			if errors.Is(err, kernel.ErrTableFull) {
				p.Yield()
				continue
			}
			break
		}
		forked++
	}
	for ; forked > 0; forked-- {
		if _, _, err := p.WaitStatus(); err != nil {
			break
		}
	}
	w.report(p, 0)
}
