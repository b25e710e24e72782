// Package validate checks rules files and reports every problem it finds,
// not only the first one.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/power-2048/game/engine"
)

// InfoPrefix marks informational lines in a valid result
const InfoPrefix = "✓ "

// ValidationResult holds the outcome of checking one rules file.
// If Valid is true, Errors contains informational lines prefixed with InfoPrefix.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Problems returns the error lines, skipping informational ones
func (r ValidationResult) Problems() []string {
	var out []string
	for _, e := range r.Errors {
		if !strings.HasPrefix(e, InfoPrefix) {
			out = append(out, e)
		}
	}
	return out
}

// File validates a single rules file
func File(path string) ValidationResult {
	result := ValidationResult{File: path, Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Cannot read file: %v", err)
		return result
	}

	var rules engine.Rules
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rules); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if strings.TrimSpace(rules.Name) == "" {
		result.fail("name is required")
	}
	if strings.TrimSpace(rules.Description) == "" {
		result.fail("description is required")
	}

	counters := []struct {
		name  string
		value int
	}{
		{"undo", rules.PowerUps.Undo},
		{"swap", rules.PowerUps.Swap},
		{"delete", rules.PowerUps.Delete},
	}
	for _, c := range counters {
		if c.value < 0 || c.value > engine.MaxPowerUpCount {
			result.fail("power_ups.%s must be between 0 and %d, got %d", c.name, engine.MaxPowerUpCount, c.value)
		}
	}

	if rules.HistoryLimit < engine.MinHistoryLimit || rules.HistoryLimit > engine.MaxHistoryLimit {
		result.fail("history_limit must be between %d and %d, got %d",
			engine.MinHistoryLimit, engine.MaxHistoryLimit, rules.HistoryLimit)
	}

	if rules.FourProbability < 0 || rules.FourProbability > 1 {
		result.fail("four_probability must be between 0 and 1, got %g", rules.FourProbability)
	}

	if !result.Valid {
		return result
	}

	// Anything the field checks miss still has to pass the engine
	if err := engine.ValidateRules(&rules); err != nil {
		result.fail("%v", err)
		return result
	}

	result.Errors = append(result.Errors,
		InfoPrefix+fmt.Sprintf("Name: %s", rules.Name),
		InfoPrefix+fmt.Sprintf("Power-ups: undo=%d swap=%d delete=%d",
			rules.PowerUps.Undo, rules.PowerUps.Swap, rules.PowerUps.Delete),
		InfoPrefix+fmt.Sprintf("History: %d snapshots", rules.HistoryLimit),
		InfoPrefix+fmt.Sprintf("Four probability: %g", rules.FourProbability),
	)
	if rules.PowerUps.Undo > 0 && rules.PowerUps.Undo >= rules.HistoryLimit {
		result.Errors = append(result.Errors,
			InfoPrefix+fmt.Sprintf("Note: only %d undos can be chained with %d snapshots", rules.HistoryLimit-1, rules.HistoryLimit))
	}

	return result
}

// Dir validates every *.json file in dir, sorted by name
func Dir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("finding rules files: %w", err)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, f := range files {
		results = append(results, File(f))
	}
	return results, nil
}
