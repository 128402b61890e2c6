package workload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/procsim/sim"
)

const (
	httpTimeout = 30 * time.Second
	// maxFetchBytes bounds a fetched workload body.
	maxFetchBytes = 32 << 20
)

// Format names a workload file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks a format from a file extension; anything that is not
// .yaml or .yml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// processID accepts both numeric and string pids.
type processID string

func (p *processID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = processID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pid must be a string or number, got %s", string(data))
	}
	*p = processID(n.String())
	return nil
}

func (p *processID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: pid must be a scalar", node.Line)
	}
	*p = processID(node.Value)
	return nil
}

// ioRecord is the body of an I/O burst entry.
type ioRecord struct {
	Type     string `json:"type" yaml:"type"`
	Duration int64  `json:"duration" yaml:"duration"`
}

// burstRecord is one entry of a job's burst list: exactly one of CPU or IO is set.
type burstRecord struct {
	CPU *int64    `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	IO  *ioRecord `json:"io,omitempty" yaml:"io,omitempty"`
}

// jobRecord is one process in a workload file.
type jobRecord struct {
	PID         processID     `json:"pid" yaml:"pid"`
	Priority    int           `json:"priority" yaml:"priority"`
	ArrivalTime *int64        `json:"arrival_time,omitempty" yaml:"arrival_time,omitempty"`
	Quantum     *int          `json:"quantum,omitempty" yaml:"quantum,omitempty"`
	Bursts      []burstRecord `json:"bursts" yaml:"bursts"`
}

func (j jobRecord) descriptor(idx int) (sim.ProcessDescriptor, error) {
	desc := sim.ProcessDescriptor{
		ID:       string(j.PID),
		Priority: j.Priority,
		Quantum:  sim.DefaultQuantum,
		Bursts:   make([]sim.Burst, 0, len(j.Bursts)),
	}
	if j.ArrivalTime != nil {
		desc.ArrivalTime = *j.ArrivalTime
	}
	if j.Quantum != nil {
		desc.Quantum = *j.Quantum
	}
	for i, b := range j.Bursts {
		switch {
		case b.CPU != nil && b.IO != nil:
			return desc, fmt.Errorf("job[%d] burst[%d]: %w: both cpu and io set", idx, i, sim.ErrInvalidBurst)
		case b.CPU != nil:
			desc.Bursts = append(desc.Bursts, sim.CPUBurst(*b.CPU))
		case b.IO != nil:
			desc.Bursts = append(desc.Bursts, sim.IOBurst(b.IO.Type, b.IO.Duration))
		default:
			return desc, fmt.Errorf("job[%d] burst[%d]: %w: neither cpu nor io set", idx, i, sim.ErrInvalidBurst)
		}
	}
	return desc, nil
}

func newJobRecord(d sim.ProcessDescriptor) jobRecord {
	arrival := d.ArrivalTime
	rec := jobRecord{
		PID:         processID(d.ID),
		Priority:    d.Priority,
		ArrivalTime: &arrival,
		Bursts:      make([]burstRecord, 0, len(d.Bursts)),
	}
	if d.Quantum > 0 {
		q := d.Quantum
		rec.Quantum = &q
	}
	for _, b := range d.Bursts {
		if b.Kind == sim.BurstIO {
			rec.Bursts = append(rec.Bursts, burstRecord{IO: &ioRecord{Type: b.DeviceClass, Duration: b.Duration}})
			continue
		}
		dur := b.Duration
		rec.Bursts = append(rec.Bursts, burstRecord{CPU: &dur})
	}
	return rec
}

// Encode renders descriptors in the workload file format, so that Parse
// returns them unchanged (a zero Quantum reloads as DefaultQuantum).
func Encode(descs []sim.ProcessDescriptor, format Format) ([]byte, error) {
	jobs := make([]jobRecord, 0, len(descs))
	for _, d := range descs {
		jobs = append(jobs, newJobRecord(d))
	}
	switch format {
	case FormatYAML:
		return yaml.Marshal(jobs)
	case FormatJSON:
		return json.MarshalIndent(jobs, "", "  ")
	default:
		return nil, fmt.Errorf("unknown workload format %q", format)
	}
}

// Parse decodes a workload document into descriptors in file order.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// Descriptors are not validated; Scheduler.AddProcess does that.
func Parse(data []byte, format Format) ([]sim.ProcessDescriptor, error) {
	var jobs []jobRecord
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&jobs); err != nil {
			return nil, fmt.Errorf("parsing yaml workload: %w", err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&jobs); err != nil {
			return nil, fmt.Errorf("parsing json workload: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown workload format %q", format)
	}

	descs := make([]sim.ProcessDescriptor, 0, len(jobs))
	for i, j := range jobs {
		d, err := j.descriptor(i)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// LoadFile reads and parses a workload file, picking the format from its extension.
func LoadFile(path string) ([]sim.ProcessDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload: %w", err)
	}
	return Parse(data, FormatForPath(path))
}

// Fetch downloads and parses a workload document over HTTP(S).
func Fetch(ctx context.Context, url string) ([]sim.ProcessDescriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// success, continue
	case http.StatusNotFound:
		return nil, fmt.Errorf("workload not found (HTTP 404). URL: %s", url)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("access denied (HTTP %d). URL: %s", resp.StatusCode, url)
	default:
		return nil, fmt.Errorf("unexpected HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	format := FormatForPath(url)
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		format = FormatYAML
	}
	return Parse(body, format)
}

// Load reads a workload from a local path or an http(s) URL.
func Load(ctx context.Context, source string) ([]sim.ProcessDescriptor, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return Fetch(ctx, source)
	}
	return LoadFile(source)
}
