// Package kernel is a multi-level feedback queue process scheduler with
// the process lifecycle around it: a fixed process table, sleep and wakeup,
// fork, exit, wait and kill, and one dispatch loop per simulated core.
//
// Records run as Programs on goroutines, but only one execution unit runs
// per core at a time: a record holds its core until it yields, sleeps,
// exits or uses up its time slice. Time is measured in ticks delivered by
// Tick, either from the caller or from an internal clock.
//
//	k, err := kernel.New(mem, fs, kernel.WithConfig(cfg))
//	k.Boot(func(p *kernel.Process) {
//		p.Fork(worker)
//		p.WaitStatus()
//	})
//	err = k.Run(ctx)
package kernel
