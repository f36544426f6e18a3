package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"atlas/internal/metrics"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

const (
	processFileName  = "process_data.json"
	approvalFileName = "approval.json"
	feedbackFileName = "iteration_feedback.json"
)

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Store reads and writes pipeline artifacts under the output directory.
type Store struct {
	dir string
	log *logger.Logger
}

// NewStore creates an artifact store rooted at dir.
func NewStore(dir string, log *logger.Logger) *Store {
	return &Store{dir: dir, log: log.With("component", "process_store")}
}

// Dir returns the output directory path.
func (s *Store) Dir() string { return s.dir }

// ProcessPath returns the canonical process JSON path.
func (s *Store) ProcessPath() string { return filepath.Join(s.dir, processFileName) }

// ApprovalPath returns the approval verdict path.
func (s *Store) ApprovalPath() string { return filepath.Join(s.dir, approvalFileName) }

// SubprocessPath returns the per-step subprocess JSON path.
func (s *Store) SubprocessPath(stepName string) string {
	slug := strings.Trim(unsafePathChars.ReplaceAllString(stepName, "_"), "_")
	if slug == "" {
		slug = "step"
	}
	return filepath.Join(s.dir, "subprocesses", fmt.Sprintf("%s.json", slug))
}

// SaveProcess validates and writes the process model.
func (s *Store) SaveProcess(proc Process) error {
	data, err := json.MarshalIndent(proc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode process")
	}
	if err := ValidateProcessJSON(string(data)); err != nil {
		return err
	}
	return s.writeFile(s.ProcessPath(), data, "json")
}

// SaveProcessJSON validates and writes raw process JSON as produced by
// the normalization loop.
func (s *Store) SaveProcessJSON(raw string) error {
	if err := ValidateProcessJSON(raw); err != nil {
		return err
	}
	return s.writeFile(s.ProcessPath(), []byte(raw), "json")
}

// LoadProcess reads the process model back.
func (s *Store) LoadProcess() (Process, error) {
	data, err := os.ReadFile(s.ProcessPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Process{}, errors.Wrapf(errors.ErrNotFound, "process file %s missing", s.ProcessPath())
		}
		return Process{}, errors.Wrap(err, "failed to read process file")
	}
	var proc Process
	if err := json.Unmarshal(data, &proc); err != nil {
		return Process{}, errors.Wrap(err, "failed to decode process file")
	}
	return proc, nil
}

// SaveSubprocess writes the drill-down flow for one step.
func (s *Store) SaveSubprocess(sub Subprocess) error {
	data, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode subprocess")
	}
	return s.writeFile(s.SubprocessPath(sub.StepName), data, "json")
}

// LoadApproval reads the current review verdict. A missing file is an
// empty verdict, not an error.
func (s *Store) LoadApproval() (Approval, error) {
	data, err := os.ReadFile(s.ApprovalPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Approval{}, nil
		}
		return Approval{}, errors.Wrap(err, "failed to read approval file")
	}
	var approval Approval
	if err := json.Unmarshal(data, &approval); err != nil {
		return Approval{}, errors.Wrap(err, "failed to decode approval file")
	}
	return approval, nil
}

// RecordApproval merges the given verdict into the stored one.
func (s *Store) RecordApproval(update Approval) (Approval, error) {
	current, err := s.LoadApproval()
	if err != nil {
		return Approval{}, err
	}
	merged := current.Merge(update)

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return Approval{}, errors.Wrap(err, "failed to encode approval")
	}
	if err := s.writeFile(s.ApprovalPath(), data, "json"); err != nil {
		return Approval{}, err
	}
	return merged, nil
}

// Feedback is one reviewer's notes from a refinement iteration.
type Feedback struct {
	Source  string `json:"source"`
	Comment string `json:"comment"`
}

// FeedbackPath returns the iteration feedback path.
func (s *Store) FeedbackPath() string { return filepath.Join(s.dir, feedbackFileName) }

// AppendFeedback adds a reviewer comment to the iteration feedback log.
func (s *Store) AppendFeedback(fb Feedback) error {
	existing, err := s.LoadFeedback()
	if err != nil {
		return err
	}
	existing = append(existing, fb)

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode feedback")
	}
	return s.writeFile(s.FeedbackPath(), data, "json")
}

// LoadFeedback reads accumulated reviewer comments. A missing file is an
// empty log.
func (s *Store) LoadFeedback() ([]Feedback, error) {
	data, err := os.ReadFile(s.FeedbackPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read feedback file")
	}
	var out []Feedback
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode feedback file")
	}
	return out, nil
}

// ResetFeedback clears the iteration log before a new run.
func (s *Store) ResetFeedback() error {
	err := os.Remove(s.FeedbackPath())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove feedback file")
	}
	return nil
}

// LoadSubprocesses reads every persisted subprocess flow, sorted by file
// name for stable document ordering.
func (s *Store) LoadSubprocesses() ([]Subprocess, error) {
	dir := filepath.Join(s.dir, "subprocesses")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list subprocess files")
	}

	var out []Subprocess
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read subprocess file %s", entry.Name())
		}
		var sub Subprocess
		if err := json.Unmarshal(data, &sub); err != nil {
			return nil, errors.Wrapf(err, "failed to decode subprocess file %s", entry.Name())
		}
		out = append(out, sub)
	}
	return out, nil
}

// ResetApproval removes a stale verdict before a new run.
func (s *Store) ResetApproval() error {
	err := os.Remove(s.ApprovalPath())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove approval file")
	}
	return nil
}

func (s *Store) writeFile(path string, data []byte, kind string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		metrics.RecordArtifactWrite(kind, err)
		return errors.Wrapf(errors.ErrArtifactWrite, "failed to create %s: %v", filepath.Dir(path), err)
	}
	err := os.WriteFile(path, data, 0o644)
	metrics.RecordArtifactWrite(kind, err)
	if err != nil {
		return errors.Wrapf(errors.ErrArtifactWrite, "failed to write %s: %v", path, err)
	}
	s.log.Debug("Artifact written", "path", path, "bytes", len(data))
	return nil
}
