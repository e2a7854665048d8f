package telemetry

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// cpuCounters holds cumulative jiffy counters from /proc/stat. CPU usage is
// derived from the delta between two consecutive readings.
type cpuCounters struct {
	idle  uint64
	total uint64
}

// parseCPUStat extracts the aggregate cpu line from /proc/stat content.
func parseCPUStat(content string) (cpuCounters, error) {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}

		counters := cpuCounters{}
		for i, field := range fields[1:] {
			value, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return cpuCounters{}, errors.Wrapf(err, "cannot parse cpu counter %q", field)
			}
			counters.total += value
			// idle is the 4th column, iowait the 5th.
			if i == 3 || i == 4 {
				counters.idle += value
			}
		}
		return counters, nil
	}
	return cpuCounters{}, errors.New("no aggregate cpu line in /proc/stat content")
}

// cpuPercent derives busy CPU percentage from two consecutive counter
// readings. Returns 0 when no time passed between readings.
func cpuPercent(previous, current cpuCounters) float64 {
	deltaTotal := float64(current.total - previous.total)
	deltaIdle := float64(current.idle - previous.idle)
	if deltaTotal <= 0 {
		return 0
	}
	return 100 * (1 - deltaIdle/deltaTotal)
}

// parseMeminfo extracts total and available memory (MB) from /proc/meminfo
// content.
func parseMeminfo(content string) (totalMB, usedMB float64, err error) {
	var totalKB, availableKB uint64
	var haveTotal, haveAvailable bool

	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB, err = strconv.ParseUint(fields[1], 10, 64)
			haveTotal = err == nil
		case "MemAvailable:":
			availableKB, err = strconv.ParseUint(fields[1], 10, 64)
			haveAvailable = err == nil
		}
	}

	if !haveTotal || !haveAvailable {
		return 0, 0, errors.New("missing MemTotal or MemAvailable in /proc/meminfo content")
	}
	return float64(totalKB) / 1024, float64(totalKB-availableKB) / 1024, nil
}

// parseLoadAvg extracts the three load averages from /proc/loadavg content.
func parseLoadAvg(content string) (load1, load5, load15 float64, err error) {
	fields := strings.Fields(content)
	if len(fields) < 3 {
		return 0, 0, 0, errors.New("malformed /proc/loadavg content")
	}
	loads := [3]float64{}
	for i := 0; i < 3; i++ {
		loads[i], err = strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return 0, 0, 0, errors.Wrapf(err, "cannot parse load average %q", fields[i])
		}
	}
	return loads[0], loads[1], loads[2], nil
}

// HostSource reads controller host metrics from procfs.
type HostSource struct {
	previous    cpuCounters
	initialized bool
}

// NewHostSource returns a Source reading local procfs files.
func NewHostSource() *HostSource {
	return &HostSource{}
}

// ID returns the source identifier recorded in samples.
func (h *HostSource) ID() string {
	return HostSourceID
}

// Collect reads /proc/stat, /proc/meminfo and /proc/loadavg once.
// The first reading reports zero CPU usage since no delta exists yet.
func (h *HostSource) Collect() (Sample, error) {
	statContent, err := os.ReadFile("/proc/stat")
	if err != nil {
		return Sample{}, errors.Wrap(err, "cannot read /proc/stat")
	}
	meminfoContent, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return Sample{}, errors.Wrap(err, "cannot read /proc/meminfo")
	}
	loadavgContent, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return Sample{}, errors.Wrap(err, "cannot read /proc/loadavg")
	}

	counters, err := parseCPUStat(string(statContent))
	if err != nil {
		return Sample{}, err
	}
	totalMB, usedMB, err := parseMeminfo(string(meminfoContent))
	if err != nil {
		return Sample{}, err
	}
	load1, load5, load15, err := parseLoadAvg(string(loadavgContent))
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{
		Timestamp:     time.Now(),
		SourceID:      HostSourceID,
		MemoryUsedMB:  usedMB,
		MemoryTotalMB: totalMB,
		Load1:         load1,
		Load5:         load5,
		Load15:        load15,
	}
	if totalMB > 0 {
		sample.MemoryPercent = 100 * usedMB / totalMB
	}
	if h.initialized {
		sample.CPUPercent = cpuPercent(h.previous, counters)
	}
	h.previous = counters
	h.initialized = true

	return sample, nil
}
