package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/lockstep/types"
)

// file mirrors the on-disk layout. Threads are decoded from the raw node so
// that their declaration order survives.
type file struct {
	Scenario *document `yaml:"scenario"`
}

type document struct {
	Name             string    `yaml:"name"`
	Datasource       string    `yaml:"datasource"`
	DefaultIsolation string    `yaml:"defaultIsolationLevel"`
	Threads          yaml.Node `yaml:"threads"`
}

type threadDoc struct {
	Steps []stepDoc `yaml:"steps"`
}

type stepDoc struct {
	ID        string   `yaml:"id"`
	Isolation string   `yaml:"isolationLevel"`
	SQL       string   `yaml:"sql"`
	SQLs      []string `yaml:"sqls"`
}

// Parse decodes and validates a scenario document.
//
// Parameters:
//   - data: YAML document with a top-level "scenario" key
//
// Returns:
//   - *types.Scenario: The scenario, threads in declaration order
//   - error: A decoding error or *types.ConfigError
func Parse(data []byte) (*types.Scenario, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if f.Scenario == nil {
		return nil, &types.ConfigError{Field: "scenario", Reason: "missing top-level scenario key"}
	}

	return f.Scenario.build()
}

// Load reads a scenario document from r.
func Load(r io.Reader) (*types.Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	return Parse(data)
}

// LoadFile reads a scenario from a YAML file.
//
// Parameters:
//   - path: Path of the scenario file
//
// Returns:
//   - *types.Scenario: The validated scenario
//   - error: A read, decoding or validation error
func LoadFile(path string) (*types.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return sc, nil
}

// List returns the scenario files (*.yml, *.yaml) directly under dir,
// sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yml", ".yaml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

func (d *document) build() (*types.Scenario, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, &types.ConfigError{Field: "name", Reason: "scenario name cannot be empty"}
	}
	if strings.TrimSpace(d.Datasource) == "" {
		return nil, &types.ConfigError{Field: "datasource", Reason: "datasource cannot be empty"}
	}

	level, err := parseLevel("defaultIsolationLevel", d.DefaultIsolation)
	if err != nil {
		return nil, err
	}

	threads, err := decodeThreads(&d.Threads)
	if err != nil {
		return nil, err
	}

	sc := &types.Scenario{
		Name:             d.Name,
		Datasource:       d.Datasource,
		DefaultIsolation: level,
		Threads:          threads,
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}

	return sc, nil
}

// decodeThreads walks the threads mapping key by key.
func decodeThreads(node *yaml.Node) ([]types.ThreadPlan, error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, &types.ConfigError{Field: "threads", Reason: "at least one thread is required"}
	}
	if node.Kind != yaml.MappingNode {
		return nil, &types.ConfigError{Field: "threads", Reason: "threads must be a mapping of thread id to steps"}
	}

	threads := make([]types.ThreadPlan, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		id := node.Content[i].Value
		field := "threads[" + id + "]"

		var td threadDoc
		if err := node.Content[i+1].Decode(&td); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}

		plan := types.ThreadPlan{ID: id, Steps: make([]types.Step, 0, len(td.Steps))}
		for j, sd := range td.Steps {
			step, err := sd.build(fmt.Sprintf("%s.steps[%d]", field, j))
			if err != nil {
				return nil, err
			}
			plan.Steps = append(plan.Steps, step)
		}

		threads = append(threads, plan)
	}

	return threads, nil
}

func (s stepDoc) build(field string) (types.Step, error) {
	level, err := parseLevel(field+".isolationLevel", s.Isolation)
	if err != nil {
		return types.Step{}, err
	}

	stmts := s.SQLs
	if len(stmts) == 0 && strings.TrimSpace(s.SQL) != "" {
		stmts = []string{s.SQL}
	}

	return types.Step{ID: s.ID, Statements: stmts, Isolation: level}, nil
}

func parseLevel(field, value string) (types.IsolationLevel, error) {
	level, err := types.ParseIsolationLevel(value)
	if err != nil {
		var cfgErr *types.ConfigError
		if errors.As(err, &cfgErr) {
			return "", &types.ConfigError{Field: field, Reason: cfgErr.Reason}
		}

		return "", err
	}

	return level, nil
}
