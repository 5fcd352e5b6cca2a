// Package notifier sends desktop notifications when simulation runs finish.
package notifier

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/types"
)

// Config represents notification configuration
type Config struct {
	Enabled      bool
	SuccessSound string
	FailureSound string
}

// FromTypes converts the file configuration. A nil section disables
// notifications.
func FromTypes(cfg *types.NotificationConfig) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		Enabled:      cfg.Enabled == nil || *cfg.Enabled,
		SuccessSound: cfg.SuccessSound,
		FailureSound: cfg.FailureSound,
	}
}

// RunNotifier reports run outcomes on the desktop.
type RunNotifier struct {
	enabled      bool
	successSound string
	failureSound string
	logger       logger.Logger

	notify func(title, message string) error
	beep   func() error
}

// New creates a run notifier.
func New(config Config, log logger.Logger) *RunNotifier {
	if log == nil {
		log = logger.Discard()
	}
	return &RunNotifier{
		enabled:      config.Enabled,
		successSound: config.SuccessSound,
		failureSound: config.FailureSound,
		logger:       log.WithComponent("notifier"),
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		beep: func() error {
			return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		},
	}
}

// SetBackend replaces the desktop calls, mostly for tests.
func (n *RunNotifier) SetBackend(notify func(title, message string) error, beep func() error) {
	n.notify = notify
	n.beep = beep
}

// Enabled reports whether notifications are sent.
func (n *RunNotifier) Enabled() bool {
	return n.enabled
}

// NotifyRunStart notifies that a run has started
func (n *RunNotifier) NotifyRunStart(name string, jobs int) {
	if !n.enabled {
		return
	}
	n.send("🧮 MLFQ", fmt.Sprintf("Running %s with %d jobs...", name, jobs), "")
}

// NotifyRunComplete reports the outcome of a finished run.
func (n *RunNotifier) NotifyRunComplete(report *types.RunReport) {
	if !n.enabled || report == nil {
		return
	}

	if report.Succeeded() {
		message := fmt.Sprintf("%s: %d processes in %d ticks (%s)",
			report.Name, len(report.Results), report.Ticks, formatDuration(report.Duration()))
		n.send("✅ Run Completed", message, n.successSound)
		return
	}

	message := fmt.Sprintf("%s %s after %d ticks", report.Name, report.Status, report.Ticks)
	if report.Error != "" {
		message += ": " + report.Error
	}
	n.send("❌ Run "+titleCase(string(report.Status)), message, n.failureSound)
}

func (n *RunNotifier) send(title, message, soundName string) {
	if err := n.notify(title, message); err != nil {
		n.logger.Debug("Failed to send notification", logger.WithField("error", err))
		n.logger.Info(fmt.Sprintf("%s: %s", title, message))
	}
	if soundName != "" {
		if err := n.beep(); err != nil {
			n.logger.Debug("Failed to play sound", logger.WithField("error", err))
		}
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
