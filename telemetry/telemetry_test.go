package telemetry

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabledRecognisesTruthySpellings(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		t.Setenv("THAILINT_ANALYTICS", v)
		assert.True(t, Enabled(), v)
	}
}

func TestEnabledDefaultsOff(t *testing.T) {
	os.Unsetenv("THAILINT_ANALYTICS")
	assert.False(t, Enabled())
}

func TestEnabledRejectsGarbage(t *testing.T) {
	t.Setenv("THAILINT_ANALYTICS", "maybe")
	assert.False(t, Enabled())
}

func TestReportIsANoOpWithoutPublicKey(t *testing.T) {
	t.Setenv("THAILINT_ANALYTICS", "1")
	PublicKey = ""
	assert.NotPanics(t, func() { ReportRunStarted(3) })
}
