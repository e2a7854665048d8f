package experiment

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// CPUModelNameKey defines a key in the platform metrics map.
	CPUModelNameKey = "cpu_model"
	// CPUCoresKey defines a key in the platform metrics map.
	CPUCoresKey = "cpu_cores"
	// MemTotalKey defines a key in the platform metrics map.
	MemTotalKey = "memory_total_mb"
	// KernelVersionKey defines a key in the platform metrics map.
	KernelVersionKey = "kernel_version"
	// SSHVersionKey defines a key in the platform metrics map.
	SSHVersionKey = "ssh_client_version"
)

// GetPlatformMetrics returns a map of strings with host descriptors recorded
// for reproducibility. If a metric could not be retrieved its value is an
// empty string.
func GetPlatformMetrics() map[string]string {
	platformMetrics := make(map[string]string)

	item, err := CPUModelName()
	if err != nil {
		logrus.Warnf("GetPlatformMetrics: failed to get %s metric, skipping: %s", CPUModelNameKey, err.Error())
	}
	platformMetrics[CPUModelNameKey] = item

	platformMetrics[CPUCoresKey] = strconv.Itoa(runtime.NumCPU())

	memTotal, err := MemTotalMB()
	if err != nil {
		logrus.Warnf("GetPlatformMetrics: failed to get %s metric, skipping: %s", MemTotalKey, err.Error())
		platformMetrics[MemTotalKey] = ""
	} else {
		platformMetrics[MemTotalKey] = strconv.FormatUint(memTotal, 10)
	}

	item, err = KernelVersion()
	if err != nil {
		logrus.Warnf("GetPlatformMetrics: failed to get %s metric, skipping: %s", KernelVersionKey, err.Error())
	}
	platformMetrics[KernelVersionKey] = item

	item, err = SSHClientVersion()
	if err != nil {
		logrus.Warnf("GetPlatformMetrics: failed to get %s metric, skipping: %s", SSHVersionKey, err.Error())
	}
	platformMetrics[SSHVersionKey] = item

	return platformMetrics
}

// CPUModelName reads /proc/cpuinfo and returns the 'model name' line.
// Only the first occurrence is returned since mixed cpu models are not
// supported.
func CPUModelName() (string, error) {
	file, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return "", errors.Wrap(err, "cannot open /proc/cpuinfo file")
	}
	defer file.Close()

	procScanner := bufio.NewScanner(file)
	for procScanner.Scan() {
		line := procScanner.Text()
		chunks := strings.SplitN(line, ":", 2)
		if len(chunks) != 2 {
			continue
		}
		if strings.TrimSpace(chunks[0]) == "model name" {
			return strings.TrimSpace(chunks[1]), nil
		}
	}

	err = procScanner.Err()
	if err == nil {
		err = errors.New("did not find phrase 'model name' in /proc/cpuinfo")
	}
	return "", err
}

// MemTotalMB returns total host memory in MB as stated in /proc/meminfo.
func MemTotalMB() (uint64, error) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, errors.Wrap(err, "cannot open /proc/meminfo file")
	}
	defer file.Close()

	procScanner := bufio.NewScanner(file)
	for procScanner.Scan() {
		fields := strings.Fields(procScanner.Text())
		if len(fields) >= 2 && fields[0] == "MemTotal:" {
			kb, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return 0, errors.Wrap(err, "cannot parse MemTotal value")
			}
			return kb / 1024, nil
		}
	}

	err = procScanner.Err()
	if err == nil {
		err = errors.New("did not find MemTotal in /proc/meminfo")
	}
	return 0, err
}

// KernelVersion returns kernel version as stated in /proc/version.
func KernelVersion() (string, error) {
	content, err := os.ReadFile("/proc/version")
	if err != nil {
		return "", errors.Wrap(err, "failed to read /proc/version")
	}
	return strings.TrimSpace(string(content)), nil
}

// SSHClientVersion returns the version banner of the local OpenSSH client.
func SSHClientVersion() (string, error) {
	cmd := exec.Command("ssh", "-V")
	// OpenSSH prints the version to stderr.
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.Wrap(err, "failed to get output from ssh -V")
	}
	return strings.TrimSpace(string(output)), nil
}

// DescribeMatrix renders a short human readable summary of the matrix used
// in logs before the suite starts.
func DescribeMatrix(m Matrix) string {
	groups := make([]string, 0, len(m.Groups))
	for _, group := range m.Groups {
		groups = append(groups, fmt.Sprintf("%s(%d)", group.Name, len(group.Nodes)))
	}
	workloads := make([]string, 0, len(m.Workloads))
	for _, workload := range m.Workloads {
		workloads = append(workloads, workload.Name)
	}
	backends := make([]string, 0, len(m.Backends))
	for _, backend := range m.Backends {
		backends = append(backends, string(backend))
	}
	return fmt.Sprintf("backends=[%s] groups=[%s] workloads=[%s] warmup=%d measurement=%d",
		strings.Join(backends, ","), strings.Join(groups, ","), strings.Join(workloads, ","),
		m.WarmupIterations, m.MeasurementIterations)
}
