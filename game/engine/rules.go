package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultRules returns the classic rules: three uses of every power-up,
// ten undo snapshots and a 10% chance of spawning a 4.
func DefaultRules() *Rules {
	return &Rules{
		Name:        "classic",
		Description: "Classic 4x4 game with three undo, swap and delete power-ups",
		PowerUps: PowerUps{
			Undo:   DefaultPowerUpCount,
			Swap:   DefaultPowerUpCount,
			Delete: DefaultPowerUpCount,
		},
		HistoryLimit:    DefaultHistoryLimit,
		FourProbability: DefaultFourProbability,
	}
}

// ValidateRules validates a rule set for correctness
func ValidateRules(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("rules validation: rules are required")
	}
	if rules.Name == "" {
		return fmt.Errorf("rules validation: name is required")
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
		if c.value < 0 || c.value > MaxPowerUpCount {
			return fmt.Errorf("rules validation: power_ups.%s must be between 0 and %d, got %d", c.name, MaxPowerUpCount, c.value)
		}
	}

	if rules.HistoryLimit < MinHistoryLimit || rules.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("rules validation: history_limit must be between %d and %d, got %d",
			MinHistoryLimit, MaxHistoryLimit, rules.HistoryLimit)
	}

	if rules.FourProbability < 0 || rules.FourProbability > 1 {
		return fmt.Errorf("rules validation: four_probability must be between 0 and 1, got %g", rules.FourProbability)
	}

	return nil
}

// LoadRulesFile loads and validates a rule set from a JSON file
func LoadRulesFile(filename string) (*Rules, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file '%s': %w", filename, err)
	}

	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file '%s': %w", filename, err)
	}

	if err := ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("invalid rules '%s': %w", filename, err)
	}

	return &rules, nil
}
