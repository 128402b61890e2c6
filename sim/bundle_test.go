package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/procsim/sim/trace"
)

func intPtr(v int) *int { return &v }

func TestLoadRunBundle_ValidYAML(t *testing.T) {
	yaml := `
policy:
  name: adaptive
  quantum: 6
  adaptive_window: 5
cpus: 2
io_devices: 3
max_ticks: 10000
trace: events
`
	path := writeTempYAML(t, yaml)
	bundle, err := LoadRunBundle(path)
	require.NoError(t, err)

	assert.Equal(t, "adaptive", bundle.Policy.Name)
	require.NotNil(t, bundle.Policy.Quantum)
	assert.Equal(t, 6, *bundle.Policy.Quantum)
	require.NotNil(t, bundle.Policy.AdaptiveWindow)
	assert.Equal(t, 5, *bundle.Policy.AdaptiveWindow)
	assert.Nil(t, bundle.Policy.Preemptive)
	require.NotNil(t, bundle.CPUs)
	assert.Equal(t, 2, *bundle.CPUs)
	require.NotNil(t, bundle.IODevs)
	assert.Equal(t, 3, *bundle.IODevs)
	require.NotNil(t, bundle.MaxTicks)
	assert.Equal(t, int64(10000), *bundle.MaxTicks)
	assert.Equal(t, trace.TraceLevelEvents, bundle.Trace)
	assert.NoError(t, bundle.Validate())
}

func TestLoadRunBundle_ZeroValueIsDistinctFromUnset(t *testing.T) {
	yaml := `
policy:
  name: priority
  preemptive: false
io_devices: 0
`
	path := writeTempYAML(t, yaml)
	bundle, err := LoadRunBundle(path)
	require.NoError(t, err)

	// io_devices: 0 is explicitly set, not "unset"
	require.NotNil(t, bundle.IODevs)
	assert.Equal(t, 0, *bundle.IODevs)
	require.NotNil(t, bundle.Policy.Preemptive)
	assert.False(t, *bundle.Policy.Preemptive)
	assert.Nil(t, bundle.CPUs)
	assert.Nil(t, bundle.Policy.Quantum)
}

func TestLoadRunBundle_UnknownField_Rejected(t *testing.T) {
	// GIVEN a typo in a key name
	path := writeTempYAML(t, "policy:\n  nmae: rr\n")

	// WHEN loaded
	_, err := LoadRunBundle(path)

	// THEN strict parsing rejects it
	assert.Error(t, err)
}

func TestLoadRunBundle_NonexistentFile(t *testing.T) {
	_, err := LoadRunBundle("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRunBundle_MalformedYAML(t *testing.T) {
	path := writeTempYAML(t, "{{invalid yaml")
	_, err := LoadRunBundle(path)
	assert.Error(t, err)
}

func TestRunBundle_Validate_EmptyIsValid(t *testing.T) {
	bundle := &RunBundle{}
	assert.NoError(t, bundle.Validate())
}

func TestRunBundle_Validate_Invalid(t *testing.T) {
	neg := int64(-1)
	tests := []struct {
		name   string
		bundle RunBundle
	}{
		{"bad policy", RunBundle{Policy: PolicySection{Name: "lottery"}}},
		{"bad trace", RunBundle{Trace: "verbose"}},
		{"negative quantum", RunBundle{Policy: PolicySection{Name: "rr", Quantum: intPtr(-1)}}},
		{"negative window", RunBundle{Policy: PolicySection{Name: "adaptive", AdaptiveWindow: intPtr(-3)}}},
		{"zero cpus", RunBundle{CPUs: intPtr(0)}},
		{"negative io devices", RunBundle{IODevs: intPtr(-1)}},
		{"negative max ticks", RunBundle{MaxTicks: &neg}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.bundle.Validate())
		})
	}
}

func TestRunBundle_Apply_OverridesOnlySetFields(t *testing.T) {
	// GIVEN a default config and a bundle that sets only the policy and cpu count
	cfg := NewSchedulerConfig()
	cfg.Policy.Quantum = 3
	preemptive := true
	bundle := &RunBundle{
		Policy: PolicySection{Name: "priority", Preemptive: &preemptive},
		CPUs:   intPtr(4),
	}

	// WHEN applied
	bundle.Apply(&cfg)

	// THEN set fields override and unset fields keep their values
	assert.Equal(t, "priority", cfg.Policy.Name)
	assert.True(t, cfg.Policy.Preemptive)
	assert.Equal(t, 3, cfg.Policy.Quantum)
	assert.Equal(t, 4, cfg.NumCPUs)
	assert.Equal(t, 1, cfg.NumIODevices)
	assert.Equal(t, trace.TraceLevelNone, cfg.TraceLevel)
}

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
