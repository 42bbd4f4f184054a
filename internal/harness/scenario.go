package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dasha/internal/domain"
)

// DefaultEpoch is used when a scenario names no epoch.
const DefaultEpoch = "2000-01-01T00:00:00Z"

// Scenario defines a conformance test scenario: one query context and the
// points located in it.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// System is the period system id.
	System string `yaml:"system"`

	// Systems lists custom CUE definition files to register first.
	// Paths are relative to the scenario file location.
	Systems []string `yaml:"systems,omitempty"`

	// Reference is the balance reference longitude. Empty means 0°.
	Reference string `yaml:"reference,omitempty"`

	// Epoch is the birth instant, RFC 3339.
	Epoch string `yaml:"epoch,omitempty"`

	// HorizonYears is the generated horizon; unset means one ruler cycle.
	HorizonYears int64 `yaml:"horizon_years,omitempty"`

	// ExpectError is the error code Open must fail with. When set, no
	// steps run.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Balance is the expected starting balance.
	Balance *BalanceExpect `yaml:"balance,omitempty"`

	// Steps locate points and check the ruler chain.
	Steps []Step `yaml:"steps,omitempty"`

	// Timeline, when set, flattens the horizon into the snapshot.
	Timeline *TimelineStep `yaml:"timeline,omitempty"`
}

// BalanceExpect is the expected active ruler and consumed fraction.
type BalanceExpect struct {
	Ruler    string `yaml:"ruler"`
	Consumed string `yaml:"consumed"`
}

// Step locates one point.
type Step struct {
	Name string `yaml:"name"`

	// Offset is a point on the time axis in Julian years from the epoch:
	// an integer or a fraction such as "13/12".
	Offset string `yaml:"offset,omitempty"`

	// Longitude is a point on the zodiac axis.
	Longitude string `yaml:"longitude,omitempty"`

	Depth int `yaml:"depth"`

	// Rulers is the expected chain, top level first.
	Rulers []string `yaml:"rulers,omitempty"`

	// Error is the expected error code.
	Error string `yaml:"error,omitempty"`
}

// TimelineStep flattens the context's horizon down to Depth.
type TimelineStep struct {
	Depth int `yaml:"depth"`
}

// LoadScenario reads and parses a scenario YAML file, resolving custom
// system paths relative to the file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving custom system paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "step:" vs "steps:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range scenario.Systems {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Systems[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.System == "" {
		return fmt.Errorf("system is required")
	}
	if s.ExpectError == "" && len(s.Steps) == 0 && s.Timeline == nil {
		return fmt.Errorf("at least one step, a timeline or expect_error is required")
	}
	if s.Reference != "" {
		if _, err := domain.ParseLongitude(s.Reference); err != nil {
			return fmt.Errorf("reference: %w", err)
		}
	}
	if s.Epoch != "" {
		if _, err := time.Parse(time.RFC3339Nano, s.Epoch); err != nil {
			return fmt.Errorf("epoch: %w", err)
		}
	}
	if s.HorizonYears < 0 {
		return fmt.Errorf("horizon_years must be non-negative")
	}

	for _, p := range s.Systems {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("system file not found: %s", p)
		}
	}

	if s.Balance != nil {
		if s.Balance.Ruler == "" {
			return fmt.Errorf("balance: ruler is required")
		}
		if _, err := parseFraction(s.Balance.Consumed); err != nil {
			return fmt.Errorf("balance: consumed: %w", err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	if s.Timeline != nil && s.Timeline.Depth < 0 {
		return fmt.Errorf("timeline: depth must be non-negative")
	}
	return nil
}

func validateStep(index int, st *Step) error {
	if st.Name == "" {
		return fmt.Errorf("steps[%d]: name is required", index)
	}
	if (st.Offset == "") == (st.Longitude == "") {
		return fmt.Errorf("steps[%d]: exactly one of offset or longitude is required", index)
	}
	if st.Offset != "" {
		if _, err := parseFraction(st.Offset); err != nil {
			return fmt.Errorf("steps[%d]: offset: %w", index, err)
		}
	}
	if st.Longitude != "" {
		if _, err := domain.ParseLongitude(st.Longitude); err != nil {
			return fmt.Errorf("steps[%d]: longitude: %w", index, err)
		}
	}
	if len(st.Rulers) == 0 && st.Error == "" {
		return fmt.Errorf("steps[%d]: rulers or error is required", index)
	}
	return nil
}
