package notify

import (
	"fmt"
	"os/exec"

	"github.com/leonardotrapani/captrans/internal/logging"
)

const appName = "captrans"

type Notifier interface {
	Started(engine, source, target string)
	Stopped()
	ConfigChanged()
	Error(msg string)
}

// New returns the notifier for a notifications.type value.
func New(kind string) Notifier {
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

func startedBody(engine, source, target string) string {
	return fmt.Sprintf("Translating %s → %s (%s)", source, target, engine)
}

const (
	stoppedBody       = "Translation stopped"
	configChangedBody = "Configuration changed, restart to apply"
)

var execCommand = exec.Command

type Desktop struct{}

func (d Desktop) Started(engine, source, target string) {
	d.send("normal", startedBody(engine, source, target))
}

func (d Desktop) Stopped() {
	d.send("low", stoppedBody)
}

func (d Desktop) ConfigChanged() {
	d.send("normal", configChangedBody)
}

func (d Desktop) Error(msg string) {
	d.send("critical", msg)
}

func (Desktop) send(urgency, body string) {
	cmd := execCommand("notify-send", "-a", appName, "-u", urgency, appName, body)
	if err := cmd.Run(); err != nil {
		logger := logging.WithComponent("notify")
		logger.Warn().Err(err).Msg("Failed to send notification")
	}
}

// Log writes notifications to the structured log instead of the desktop.
type Log struct{}

func (Log) Started(engine, source, target string) {
	logger := logging.WithComponent("notify")
	logger.Info().Msg(startedBody(engine, source, target))
}

func (Log) Stopped() {
	logger := logging.WithComponent("notify")
	logger.Info().Msg(stoppedBody)
}

func (Log) ConfigChanged() {
	logger := logging.WithComponent("notify")
	logger.Warn().Msg(configChangedBody)
}

func (Log) Error(msg string) {
	logger := logging.WithComponent("notify")
	logger.Error().Msg(msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) Started(engine, source, target string) {}
func (Nop) Stopped()                              {}
func (Nop) ConfigChanged()                        {}
func (Nop) Error(msg string)                      {}
