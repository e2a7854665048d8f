package experiment

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Matrix describes the full configuration space of one suite execution.
type Matrix struct {
	Backends              []Backend      `yaml:"backends"`
	Groups                []ScalingGroup `yaml:"scaling_groups"`
	Workloads             []Workload     `yaml:"workloads"`
	WarmupIterations      int            `yaml:"warmup_iterations"`
	MeasurementIterations int            `yaml:"measurement_iterations"`
}

// ValidationError signals a matrix that must be rejected before any run
// starts. The CLI maps it to its own exit code.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration matrix: %s", e.Reason)
}

// LoadMatrix reads a Matrix from a YAML file.
func LoadMatrix(path string) (Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Matrix{}, errors.Wrapf(err, "could not read matrix file %q", path)
	}

	matrix := Matrix{}
	if err := yaml.Unmarshal(data, &matrix); err != nil {
		return Matrix{}, errors.Wrapf(err, "could not parse matrix file %q", path)
	}

	return matrix, nil
}

// Validate rejects unknown backends, empty scaling groups and degenerate
// iteration counts. It must be called before any run is dispatched.
func (m Matrix) Validate() error {
	if len(m.Backends) == 0 {
		return ValidationError{Reason: "no backends defined"}
	}
	for _, backend := range m.Backends {
		if !isKnownBackend(backend) {
			return ValidationError{Reason: fmt.Sprintf("unknown backend %q", backend)}
		}
	}

	if len(m.Groups) == 0 {
		return ValidationError{Reason: "no scaling groups defined"}
	}
	groupNames := map[string]struct{}{}
	for _, group := range m.Groups {
		if group.Name == "" {
			return ValidationError{Reason: "scaling group with empty name"}
		}
		if len(group.Nodes) == 0 {
			return ValidationError{Reason: fmt.Sprintf("scaling group %q has no nodes", group.Name)}
		}
		if _, ok := groupNames[group.Name]; ok {
			return ValidationError{Reason: fmt.Sprintf("duplicated scaling group %q", group.Name)}
		}
		groupNames[group.Name] = struct{}{}
	}

	if len(m.Workloads) == 0 {
		return ValidationError{Reason: "no workloads defined"}
	}
	workloadNames := map[string]struct{}{}
	for _, workload := range m.Workloads {
		if workload.Name == "" || workload.Command == "" {
			return ValidationError{Reason: "workload with empty name or command"}
		}
		if _, ok := workloadNames[workload.Name]; ok {
			return ValidationError{Reason: fmt.Sprintf("duplicated workload %q", workload.Name)}
		}
		workloadNames[workload.Name] = struct{}{}
	}

	if m.WarmupIterations < 0 {
		return ValidationError{Reason: "negative warmup iterations"}
	}
	if m.MeasurementIterations < 1 {
		return ValidationError{Reason: "measurement iterations must be at least 1"}
	}

	return nil
}

// Enumerate produces all configurations of the given phase in a fixed,
// deterministic order: backend first, then scaling group ascending by node
// count, then workload, then iteration. Grouping by backend minimizes
// transport switches; ascending groups surface scaling degradation
// progressively in logs.
func (m Matrix) Enumerate(phase Phase) []Configuration {
	iterations := m.MeasurementIterations
	if phase == PhaseWarmup {
		iterations = m.WarmupIterations
	}

	groups := make([]ScalingGroup, len(m.Groups))
	copy(groups, m.Groups)
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Nodes) < len(groups[j].Nodes)
	})

	var configurations []Configuration
	for _, backend := range m.Backends {
		for _, group := range groups {
			for _, workload := range m.Workloads {
				for iteration := 1; iteration <= iterations; iteration++ {
					configurations = append(configurations, Configuration{
						Backend:   backend,
						Group:     group,
						Workload:  workload,
						Iteration: iteration,
						Phase:     phase,
					})
				}
			}
		}
	}
	return configurations
}

func isKnownBackend(backend Backend) bool {
	for _, known := range KnownBackends {
		if backend == known {
			return true
		}
	}
	return false
}
