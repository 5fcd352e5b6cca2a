// Package engine runs scheduler simulations. A Simulator boots a kernel
// over simulated memory and files, forks the configured jobs from init,
// drives the clock until they are reaped or the tick budget runs out, and
// turns the kernel's event stream into a run report.
//
// The implementation is split across files:
//   - simulator.go: run orchestration and clock driving
//   - collector.go: kernel event collection and report building
//   - factory.go: dependency construction from configuration
//   - safegroup.go: panic-safe goroutine groups
package engine
