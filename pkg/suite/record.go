package suite

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
)

// RecordStore accumulates completed run records. It is safe for concurrent
// appends from scheduler workers; persisted output is always written from a
// consistent snapshot.
type RecordStore struct {
	mu      sync.Mutex
	records []experiment.RunRecord
}

// NewRecordStore returns an empty record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Append adds one completed record.
func (s *RecordStore) Append(record experiment.RunRecord) {
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
}

// Snapshot returns a copy of all records appended so far.
func (s *RecordStore) Snapshot() []experiment.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]experiment.RunRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records appended so far.
func (s *RecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// WriteCSV persists run results in the documented layout:
// timestamp, backend, scaling_group, iteration, duration_seconds, exit_status.
// Failed and timed out runs carry an empty duration field; their measured
// time is not comparable.
func (s *RecordStore) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create run results file %q", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"timestamp", "backend", "scaling_group", "iteration", "duration_seconds", "exit_status"}); err != nil {
		return errors.Wrap(err, "could not write run results header")
	}

	for _, record := range s.Snapshot() {
		duration := ""
		if record.Status == experiment.StatusSuccess {
			duration = fmt.Sprintf("%.3f", record.Duration.Seconds())
		}
		row := []string{
			record.Start.Format(time.RFC3339Nano),
			string(record.Config.Backend),
			record.Config.Group.Name,
			fmt.Sprintf("%d", record.Config.Iteration),
			duration,
			string(record.Status),
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "could not write run results row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush run results file")
}

// recordDocument is the JSON shape of one run record. The JSON file carries
// the full configuration tuple (the CSV omits workload and phase) so the
// analyzer can rebuild statistical groups from it.
type recordDocument struct {
	Backend         string    `json:"backend"`
	ScalingGroup    string    `json:"scaling_group"`
	Nodes           []string  `json:"nodes"`
	Workload        string    `json:"workload"`
	Iteration       int       `json:"iteration"`
	Phase           string    `json:"phase"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds float64   `json:"duration_seconds"`
	Status          string    `json:"exit_status"`
	WindowStart     int       `json:"telemetry_window_start"`
	WindowEnd       int       `json:"telemetry_window_end"`
}

// WriteJSON persists all records with their full configuration tuples.
func (s *RecordStore) WriteJSON(path string) error {
	records := s.Snapshot()
	documents := make([]recordDocument, 0, len(records))
	for _, record := range records {
		documents = append(documents, recordDocument{
			Backend:         string(record.Config.Backend),
			ScalingGroup:    record.Config.Group.Name,
			Nodes:           record.Config.Group.Nodes,
			Workload:        record.Config.Workload.Name,
			Iteration:       record.Config.Iteration,
			Phase:           string(record.Config.Phase),
			Start:           record.Start,
			End:             record.End,
			DurationSeconds: record.Duration.Seconds(),
			Status:          string(record.Status),
			WindowStart:     record.WindowStart,
			WindowEnd:       record.WindowEnd,
		})
	}

	data, err := json.MarshalIndent(documents, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not marshal run records")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "could not write run records file %q", path)
}

// LoadRecords reads records persisted by WriteJSON, for offline analysis.
func LoadRecords(path string) ([]experiment.RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read run records file %q", path)
	}

	var documents []recordDocument
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, errors.Wrapf(err, "could not parse run records file %q", path)
	}

	records := make([]experiment.RunRecord, 0, len(documents))
	for _, document := range documents {
		records = append(records, experiment.RunRecord{
			Config: experiment.Configuration{
				Backend:   experiment.Backend(document.Backend),
				Group:     experiment.ScalingGroup{Name: document.ScalingGroup, Nodes: document.Nodes},
				Workload:  experiment.Workload{Name: document.Workload},
				Iteration: document.Iteration,
				Phase:     experiment.Phase(document.Phase),
			},
			Start:       document.Start,
			End:         document.End,
			Duration:    time.Duration(document.DurationSeconds * float64(time.Second)),
			Status:      experiment.Status(document.Status),
			WindowStart: document.WindowStart,
			WindowEnd:   document.WindowEnd,
		})
	}
	return records, nil
}
