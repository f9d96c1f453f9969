package reconcile

import (
	"fmt"
	"strings"

	"inventory-sync/core/inventory"
)

// Strategy is the conflict policy of one entity kind.
type Strategy string

const (
	// StrategyOverwrite applies creates and updates.
	StrategyOverwrite Strategy = "overwrite"
	// StrategySkip applies creates and leaves differing target records untouched.
	StrategySkip Strategy = "skip"
	// StrategyFlag writes nothing and flags every create and update for review.
	StrategyFlag Strategy = "flag"
)

// DefaultStrategy is used for kinds without a configured strategy.
const DefaultStrategy = StrategyFlag

// IsValid returns true for the three known strategies.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyOverwrite, StrategySkip, StrategyFlag:
		return true
	default:
		return false
	}
}

// ParseStrategy parses a configured strategy. The empty string selects DefaultStrategy.
func ParseStrategy(s string) (Strategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultStrategy, nil
	}
	if st := Strategy(s); st.IsValid() {
		return st, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want overwrite, skip or flag)", s)
}

// Change is the kind of write a key needs.
type Change string

const (
	ChangeCreate Change = "create"
	ChangeUpdate Change = "update"
)

// Decision is the outcome of the conflict policy for one key.
type Decision string

const (
	DecisionApply Decision = "apply"
	DecisionSkip  Decision = "skip"
	DecisionFlag  Decision = "flag"
)

// decisionTable is the complete conflict policy, keyed by strategy then change.
var decisionTable = map[Strategy]map[Change]Decision{
	StrategyOverwrite: {ChangeCreate: DecisionApply, ChangeUpdate: DecisionApply},
	StrategySkip:      {ChangeCreate: DecisionApply, ChangeUpdate: DecisionSkip},
	StrategyFlag:      {ChangeCreate: DecisionFlag, ChangeUpdate: DecisionFlag},
}

// Decide returns the decision for a candidate source entity. existing is the current
// target entity, or nil when the key is absent from the target. Unknown strategies
// behave like DefaultStrategy. Decide has no side effects.
func Decide(strategy Strategy, existing, candidate inventory.Entity) Decision {
	change := ChangeUpdate
	if existing == nil {
		change = ChangeCreate
	}
	row, ok := decisionTable[strategy]
	if !ok {
		row = decisionTable[DefaultStrategy]
	}
	return row[change]
}

// Policy maps each kind to its strategy. Kinds without an entry use DefaultStrategy.
type Policy map[inventory.Kind]Strategy

// For returns the strategy of kind.
func (p Policy) For(kind inventory.Kind) Strategy {
	if s, ok := p[kind]; ok && s.IsValid() {
		return s
	}
	return DefaultStrategy
}

// Validate rejects unknown kinds and strategies.
func (p Policy) Validate() error {
	for kind, s := range p {
		if !kind.IsValid() {
			return &ConfigurationError{Field: "strategy." + string(kind), Reason: "unknown entity kind"}
		}
		if !s.IsValid() {
			return &ConfigurationError{Field: "strategy." + string(kind), Reason: fmt.Sprintf("unknown strategy %q", s)}
		}
	}
	return nil
}
