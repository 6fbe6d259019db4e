// Package telemetry reports opt-in, PII-free run-shape events (file
// counts, violation counts, elapsed time) for
// engine.run_started / engine.run_finished. Gated by the THAILINT_ANALYTICS
// environment variable; disabled unless it is set to a truthy value and a
// public key has been configured.
//
// Adapted from the teacher's analytics/usage.go (posthog-go +
// godotenv-backed anonymous distinct id + ReportEventWithProperties),
// generalised from its scan/CI/MCP command event set to this engine's two
// run-lifecycle events.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

const (
	RunStarted  = "engine.run_started"
	RunFinished = "engine.run_finished"
)

// PublicKey is the PostHog project key. Left empty, telemetry never sends
// anything regardless of the environment variable.
var PublicKey string

// Enabled reports whether THAILINT_ANALYTICS opts this process into usage
// reporting. Accepts the usual truthy spellings plus anything
// strconv.ParseBool reads as true (such as "t"); unset or any other value
// is "off", matching the conservative default for an opt-in signal.
func Enabled() bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("THAILINT_ANALYTICS")))
	switch raw {
	case "1", "true", "yes", "on":
		return true
	default:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		return false
	}
}

// LoadEnvFile bootstraps the anonymous distinct id from
// ~/.thailint/.env, creating it on first run (mirrors the teacher's
// createEnvFile/LoadEnvFile pair).
func LoadEnvFile() {
	envFile, err := envFilePath()
	if err != nil {
		return
	}
	if _, statErr := os.Stat(envFile); os.IsNotExist(statErr) {
		if mkErr := os.MkdirAll(filepath.Dir(envFile), 0o755); mkErr != nil {
			return
		}
		_ = godotenv.Write(map[string]string{"uuid": uuid.New().String()}, envFile)
	}
	_ = godotenv.Load(envFile)
}

func envFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".thailint", ".env"), nil
}

// ReportRunStarted sends engine.run_started with the file count about to
// be processed.
func ReportRunStarted(fileCount int) {
	report(RunStarted, map[string]any{"file_count": fileCount})
}

// ReportRunFinished sends engine.run_finished with the run's shape:
// files scanned/skipped, violation count, elapsed seconds. None of these
// properties carry a file path, source snippet, or other PII.
func ReportRunFinished(filesScanned, filesSkipped, violationCount int, elapsedSeconds float64) {
	report(RunFinished, map[string]any{
		"files_scanned":   filesScanned,
		"files_skipped":   filesSkipped,
		"violation_count": violationCount,
		"elapsed_seconds": elapsedSeconds,
	})
}

func report(event string, properties map[string]any) {
	if !Enabled() || PublicKey == "" {
		return
	}
	disableGeoIP := true
	client, err := posthog.NewWithConfig(PublicKey, posthog.Config{
		Endpoint:     "https://us.i.posthog.com",
		DisableGeoIP: &disableGeoIP,
	})
	if err != nil {
		return
	}
	defer client.Close()

	props := posthog.NewProperties()
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("go_version", runtime.Version())
	for k, v := range properties {
		props.Set(k, v)
	}

	err = client.Enqueue(posthog.Capture{
		DistinctId: distinctID(),
		Event:      event,
		Properties: props,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "telemetry:", err)
	}
}

func distinctID() string {
	if id := os.Getenv("uuid"); id != "" {
		return id
	}
	return "anonymous"
}
