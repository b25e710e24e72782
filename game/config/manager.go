package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
)

var (
	ErrRulesNotFound = errors.New("rules not found")
	ErrInvalidRules  = errors.New("invalid rules")
)

// DefaultRulesName is the rule set preferred as default
const DefaultRulesName = "classic"

// Manager handles rule set loading and caching
type Manager struct {
	rulesDir     string
	defaultRules *engine.Rules
	rules        map[string]*engine.Rules
	mu           sync.RWMutex
}

// NewManager creates a new rules manager. A missing directory is not an
// error; the manager then serves only the built-in classic rules.
func NewManager(rulesDir string) (*Manager, error) {
	if rulesDir != "" {
		info, err := os.Stat(rulesDir)
		if err == nil && !info.IsDir() {
			return nil, fmt.Errorf("rules path is not a directory: %s", rulesDir)
		}
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat rules directory: %w", err)
		}
	}

	m := &Manager{
		rulesDir: rulesDir,
		rules:    make(map[string]*engine.Rules),
	}

	m.loadDefaultRules()
	return m, nil
}

// LoadRules loads a rule set by name
func (m *Manager) LoadRules(name string) (*engine.Rules, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if rules, exists := m.rules[name]; exists {
		m.mu.RUnlock()
		return rules, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if rules, exists := m.rules[name]; exists {
		return rules, nil
	}

	rules, err := m.readRules(name)
	if err != nil {
		if errors.Is(err, ErrRulesNotFound) && name == DefaultRulesName {
			rules = engine.DefaultRules()
			m.rules[name] = rules
			return rules, nil
		}
		return nil, err
	}

	m.rules[name] = rules
	return rules, nil
}

func (m *Manager) readRules(name string) (*engine.Rules, error) {
	if m.rulesDir == "" || strings.ContainsAny(name, `/\`) || name == "" {
		return nil, ErrRulesNotFound
	}

	data, err := os.ReadFile(filepath.Join(m.rulesDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRulesNotFound
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules engine.Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidRules, name, err)
	}

	if err := engine.ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	return &rules, nil
}

// ListRules returns information about all available rule sets. Invalid
// files are skipped; the built-in classic rules are always listed.
func (m *Manager) ListRules() ([]*service.RulesInfo, error) {
	var result []*service.RulesInfo
	seen := make(map[string]bool)

	if m.rulesDir != "" {
		entries, err := os.ReadDir(m.rulesDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read rules directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}

			id := strings.TrimSuffix(entry.Name(), ".json")
			rules, err := m.LoadRules(id)
			if err != nil {
				continue
			}

			seen[id] = true
			result = append(result, newRulesInfo(entry.Name(), id, rules))
		}
	}

	if !seen[DefaultRulesName] {
		result = append(result, newRulesInfo("", DefaultRulesName, engine.DefaultRules()))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RulesID < result[j].RulesID
	})

	return result, nil
}

func newRulesInfo(filename, id string, rules *engine.Rules) *service.RulesInfo {
	return &service.RulesInfo{
		Filename:        filename,
		RulesID:         id,
		Name:            rules.Name,
		Description:     rules.Description,
		PowerUps:        rules.PowerUps,
		HistoryLimit:    rules.HistoryLimit,
		FourProbability: rules.FourProbability,
	}
}

// GetDefault returns the default rule set
func (m *Manager) GetDefault() *engine.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultRules
}

// SetDefault sets the default rule set by name
func (m *Manager) SetDefault(name string) error {
	rules, err := m.LoadRules(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRules = rules
	return nil
}

// RefreshCache drops cached rule sets so they are re-read from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.rules = make(map[string]*engine.Rules)
	m.mu.Unlock()

	m.loadDefaultRules()
}

// loadDefaultRules prefers classic.json and falls back to the built-in rules
func (m *Manager) loadDefaultRules() {
	rules, err := m.LoadRules(DefaultRulesName)
	if err != nil {
		rules = engine.DefaultRules()
	}

	m.mu.Lock()
	m.defaultRules = rules
	m.mu.Unlock()
}

// SaveRules validates a rule set and writes it to the rules directory
func (m *Manager) SaveRules(name string, rules *engine.Rules) error {
	if err := engine.ValidateRules(rules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if m.rulesDir == "" {
		return errors.New("no rules directory configured")
	}

	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidRules, name)
	}

	if err := os.MkdirAll(m.rulesDir, 0755); err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.rulesDir, name+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	m.mu.Lock()
	m.rules[name] = rules
	m.mu.Unlock()

	return nil
}
