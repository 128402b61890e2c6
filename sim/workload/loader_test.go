package workload

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/procsim/sim"
)

const sampleJSON = `[
  {"pid": 1, "priority": 2, "bursts": [{"cpu": 5}, {"io": {"type": "disk", "duration": 3}}, {"cpu": 2}]},
  {"pid": "B", "priority": 0, "arrival_time": 7, "quantum": 2, "bursts": [{"cpu": 4}]}
]`

const sampleYAML = `
- pid: 1
  priority: 2
  bursts:
    - cpu: 5
    - io: {type: disk, duration: 3}
    - cpu: 2
- pid: B
  arrival_time: 7
  quantum: 2
  bursts:
    - cpu: 4
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func assertSample(t *testing.T, descs []sim.ProcessDescriptor) {
	t.Helper()
	require.Len(t, descs, 2)

	assert.Equal(t, "1", descs[0].ID)
	assert.Equal(t, 2, descs[0].Priority)
	assert.Equal(t, int64(0), descs[0].ArrivalTime)
	assert.Equal(t, sim.DefaultQuantum, descs[0].Quantum)
	assert.Equal(t, []sim.Burst{sim.CPUBurst(5), sim.IOBurst("disk", 3), sim.CPUBurst(2)}, descs[0].Bursts)

	assert.Equal(t, "B", descs[1].ID)
	assert.Equal(t, int64(7), descs[1].ArrivalTime)
	assert.Equal(t, 2, descs[1].Quantum)
	assert.Equal(t, []sim.Burst{sim.CPUBurst(4)}, descs[1].Bursts)
}

func TestParse_JSONAndYAML_ProduceSameDescriptors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"json", sampleJSON, FormatJSON},
		{"yaml", sampleYAML, FormatYAML},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			descs, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)
			assertSample(t, descs)
		})
	}
}

func TestParse_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"unknown json key", `[{"pid": 1, "prio": 2, "bursts": [{"cpu": 1}]}]`, FormatJSON},
		{"unknown yaml key", "- pid: 1\n  prio: 2\n  bursts: [{cpu: 1}]\n", FormatYAML},
		{"burst with both kinds", `[{"pid": 1, "bursts": [{"cpu": 1, "io": {"type": "disk", "duration": 1}}]}]`, FormatJSON},
		{"empty burst entry", `[{"pid": 1, "bursts": [{}]}]`, FormatJSON},
		{"pid is an object", `[{"pid": {"x": 1}, "bursts": [{"cpu": 1}]}]`, FormatJSON},
		{"not a list", `{"pid": 1}`, FormatJSON},
		{"unknown format", `[]`, Format("toml")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), tc.format)
			assert.Error(t, err)
		})
	}
}

func TestParse_MixedBurstEntry_WrapsInvalidBurst(t *testing.T) {
	// GIVEN a burst entry that sets both cpu and io
	data := `[{"pid": 1, "bursts": [{"cpu": 1, "io": {"type": "disk", "duration": 1}}]}]`

	// WHEN parsed
	_, err := Parse([]byte(data), FormatJSON)

	// THEN the error matches sim.ErrInvalidBurst
	assert.True(t, errors.Is(err, sim.ErrInvalidBurst), "got %v", err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("jobs.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("JOBS.YML"))
	assert.Equal(t, FormatJSON, FormatForPath("jobs.json"))
	assert.Equal(t, FormatJSON, FormatForPath("jobs"))
}

func TestLoadFile_PicksFormatFromExtension(t *testing.T) {
	descs, err := LoadFile(writeFile(t, "jobs.yml", sampleYAML))
	require.NoError(t, err)
	assertSample(t, descs)

	descs, err = LoadFile(writeFile(t, "jobs.json", sampleJSON))
	require.NoError(t, err)
	assertSample(t, descs)
}

func TestLoadFile_MissingFile_ReturnsError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestFetch_StatusHandling(t *testing.T) {
	const url = "https://example.test/jobs.json"
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"ok", http.StatusOK, sampleJSON, ""},
		{"not found", http.StatusNotFound, "", "HTTP 404"},
		{"unauthorized", http.StatusUnauthorized, "", "access denied"},
		{"forbidden", http.StatusForbidden, "", "access denied"},
		{"server error", http.StatusInternalServerError, "", "unexpected HTTP 500"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN a mocked endpoint
			httpmock.Activate(t)
			defer httpmock.DeactivateAndReset()
			httpmock.RegisterResponder(http.MethodGet, url, httpmock.NewStringResponder(tc.status, tc.body))

			// WHEN fetched
			descs, err := Fetch(context.Background(), url)

			// THEN the status maps to success or a descriptive error
			if tc.wantErr == "" {
				require.NoError(t, err)
				assertSample(t, descs)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
			assert.Equal(t, 1, httpmock.GetTotalCallCount())
		})
	}
}

func TestFetch_YAMLContentType_ParsesAsYAML(t *testing.T) {
	// GIVEN a URL without an extension served as YAML
	httpmock.Activate(t)
	defer httpmock.DeactivateAndReset()
	resp := httpmock.NewStringResponse(http.StatusOK, sampleYAML)
	resp.Header = http.Header{"Content-Type": []string{"application/yaml"}}
	httpmock.RegisterResponder(http.MethodGet, "https://example.test/jobs", httpmock.ResponderFromResponse(resp))

	// WHEN fetched
	descs, err := Fetch(context.Background(), "https://example.test/jobs")

	// THEN it is decoded as YAML
	require.NoError(t, err)
	assertSample(t, descs)
}

func TestLoad_DispatchesOnScheme(t *testing.T) {
	httpmock.Activate(t)
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodGet, "http://example.test/w.json", httpmock.NewStringResponder(http.StatusOK, sampleJSON))

	remote, err := Load(context.Background(), "http://example.test/w.json")
	require.NoError(t, err)
	assertSample(t, remote)

	local, err := Load(context.Background(), writeFile(t, "w.json", sampleJSON))
	require.NoError(t, err)
	assert.Equal(t, remote, local)
}

func TestEncode_ParseReturnsSameDescriptors(t *testing.T) {
	// GIVEN descriptors with explicit quanta and mixed bursts
	descs, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			// WHEN encoded and parsed back
			data, err := Encode(descs, format)
			require.NoError(t, err)
			back, err := Parse(data, format)

			// THEN nothing is lost
			require.NoError(t, err)
			assert.Equal(t, descs, back)
		})
	}
}
