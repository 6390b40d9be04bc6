// Package types provides shared types and errors for the lockstep library.
//
// This is a "leaf" package with no imports from other lockstep packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"database/sql"
	"strconv"
	"strings"
)

// IsolationLevel is a transaction isolation level as written in scenario files.
//
// The zero value means "not set": the database or connection default applies.
type IsolationLevel string

const (
	IsolationUnset           IsolationLevel = ""
	IsolationReadUncommitted IsolationLevel = "READ_UNCOMMITTED"
	IsolationReadCommitted   IsolationLevel = "READ_COMMITTED"
	IsolationRepeatableRead  IsolationLevel = "REPEATABLE_READ"
	IsolationSerializable    IsolationLevel = "SERIALIZABLE"
)

// ParseIsolationLevel parses a scenario isolation level.
//
// Matching is case-insensitive and accepts spaces or dashes in place of
// underscores ("read committed", "repeatable-read"). An empty string yields
// IsolationUnset.
//
// Parameters:
//   - s: The isolation level text
//
// Returns:
//   - IsolationLevel: The parsed level
//   - error: *ConfigError if the value is not a known level
func ParseIsolationLevel(s string) (IsolationLevel, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)

	switch IsolationLevel(norm) {
	case IsolationUnset:
		return IsolationUnset, nil
	case IsolationReadUncommitted, IsolationReadCommitted, IsolationRepeatableRead, IsolationSerializable:
		return IsolationLevel(norm), nil
	}

	return IsolationUnset, &ConfigError{Field: "isolationLevel", Reason: "unknown isolation level " + strings.TrimSpace(s)}
}

// String returns the scenario spelling of the level.
func (l IsolationLevel) String() string {
	return string(l)
}

// IsSet reports whether a level was specified.
func (l IsolationLevel) IsSet() bool {
	return l != IsolationUnset
}

// Valid reports whether l is unset or one of the canonical levels.
// Use ParseIsolationLevel to canonicalize user input first.
func (l IsolationLevel) Valid() bool {
	switch l {
	case IsolationUnset, IsolationReadUncommitted, IsolationReadCommitted, IsolationRepeatableRead, IsolationSerializable:
		return true
	}

	return false
}

// SQL returns the level as used in "SET ... ISOLATION LEVEL <x>" statements,
// e.g. "READ COMMITTED". Returns an empty string for IsolationUnset.
func (l IsolationLevel) SQL() string {
	return strings.ReplaceAll(string(l), "_", " ")
}

// ToSQL maps the level onto database/sql's isolation constants.
func (l IsolationLevel) ToSQL() sql.IsolationLevel {
	switch l {
	case IsolationReadUncommitted:
		return sql.LevelReadUncommitted
	case IsolationReadCommitted:
		return sql.LevelReadCommitted
	case IsolationRepeatableRead:
		return sql.LevelRepeatableRead
	case IsolationSerializable:
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}

// Step is one synchronized unit of work within a thread's plan.
//
// All statements run sequentially on the thread's own connection.
type Step struct {
	// ID correlates results with the scenario file. Optional.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Statements holds one or more SQL statements, executed in order.
	Statements []string `json:"sqls" yaml:"sqls"`

	// Isolation overrides the connection isolation level. It is applied only
	// when the first statement starts a transaction.
	Isolation IsolationLevel `json:"isolationLevel,omitempty" yaml:"isolationLevel,omitempty"`
}

// transactionStarts lists statement prefixes that begin a transaction.
var transactionStarts = []string{
	"BEGIN",
	"BEGIN WORK",
	"BEGIN TRANSACTION",
	"START TRANSACTION",
}

// transactionEnds lists statements that finish the current transaction.
// ROLLBACK TO SAVEPOINT is deliberately absent: the transaction stays open.
var transactionEnds = []string{
	"COMMIT",
	"COMMIT WORK",
	"COMMIT TRANSACTION",
	"END",
	"END TRANSACTION",
	"ROLLBACK",
	"ROLLBACK WORK",
	"ROLLBACK TRANSACTION",
	"ABORT",
}

// StartsTransaction reports whether the step's first statement is a
// transaction-begin marker.
func (s Step) StartsTransaction() bool {
	if len(s.Statements) == 0 {
		return false
	}

	return IsTransactionStart(s.Statements[0])
}

// IsTransactionStart reports whether stmt is a bare transaction-begin
// statement such as "BEGIN" or "START TRANSACTION;".
func IsTransactionStart(stmt string) bool {
	return matchesMarker(stmt, transactionStarts)
}

// IsTransactionEnd reports whether stmt is a bare COMMIT or ROLLBACK, in any
// of their common spellings.
func IsTransactionEnd(stmt string) bool {
	return matchesMarker(stmt, transactionEnds)
}

func matchesMarker(stmt string, markers []string) bool {
	norm := strings.TrimSpace(stmt)
	norm = strings.TrimSpace(strings.TrimSuffix(norm, ";"))
	norm = strings.ToUpper(strings.Join(strings.Fields(norm), " "))

	for _, marker := range markers {
		if norm == marker {
			return true
		}
	}

	return false
}

// ThreadPlan is the ordered list of steps of one simulated client session.
type ThreadPlan struct {
	ID    string `json:"id" yaml:"id"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Scenario is a declarative multi-thread transaction test definition.
//
// Threads keep their declaration order; result ordering depends on it.
type Scenario struct {
	Name             string         `json:"name" yaml:"name"`
	Datasource       string         `json:"datasource" yaml:"datasource"`
	DefaultIsolation IsolationLevel `json:"defaultIsolationLevel,omitempty" yaml:"defaultIsolationLevel,omitempty"`
	Threads          []ThreadPlan   `json:"threads" yaml:"threads"`
}

// StepCount returns the number of steps per thread, or 0 if there are no threads.
func (s *Scenario) StepCount() int {
	if len(s.Threads) == 0 {
		return 0
	}

	return len(s.Threads[0].Steps)
}

// Validate checks the structural invariants the executor relies on:
// at least one thread, unique non-empty thread ids, at least one step per
// thread, equal step counts across threads and at least one non-blank
// statement per step.
//
// Returns:
//   - error: *ConfigError describing the first violation, or nil
func (s *Scenario) Validate() error {
	if s == nil {
		return &ConfigError{Field: "scenario", Reason: "scenario is nil"}
	}

	if len(s.Threads) == 0 {
		return &ConfigError{Field: "threads", Reason: "at least one thread is required"}
	}

	if !s.DefaultIsolation.Valid() {
		return &ConfigError{Field: "defaultIsolationLevel", Reason: "unknown isolation level " + string(s.DefaultIsolation)}
	}

	seen := make(map[string]struct{}, len(s.Threads))
	expected := len(s.Threads[0].Steps)

	for _, t := range s.Threads {
		field := "threads[" + t.ID + "]"
		if strings.TrimSpace(t.ID) == "" {
			return &ConfigError{Field: "threads", Reason: "thread id cannot be empty"}
		}
		if _, dup := seen[t.ID]; dup {
			return &ConfigError{Field: field, Reason: "duplicate thread id"}
		}
		seen[t.ID] = struct{}{}

		if len(t.Steps) == 0 {
			return &ConfigError{Field: field + ".steps", Reason: "at least one step is required"}
		}
		if len(t.Steps) != expected {
			return &ConfigError{
				Field:  field + ".steps",
				Reason: "all threads must have the same number of steps: got " + strconv.Itoa(len(t.Steps)) + ", expected " + strconv.Itoa(expected),
			}
		}

		for i, step := range t.Steps {
			stepField := field + ".steps[" + strconv.Itoa(i) + "]"
			if len(step.Statements) == 0 {
				return &ConfigError{Field: stepField, Reason: "at least one SQL statement is required"}
			}
			for j, stmt := range step.Statements {
				if strings.TrimSpace(stmt) == "" {
					return &ConfigError{Field: stepField + ".sqls[" + strconv.Itoa(j) + "]", Reason: "SQL statement cannot be blank"}
				}
			}
			if !step.Isolation.Valid() {
				return &ConfigError{Field: stepField + ".isolationLevel", Reason: "unknown isolation level " + string(step.Isolation)}
			}
		}
	}

	return nil
}
