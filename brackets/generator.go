// Package brackets produces the initial set of pairings for a tournament
// roster. Generators are pure: given the same roster order they always emit
// the same pairings, so the stored match set is reproducible.
package brackets

import (
	"errors"
	"fmt"
)

var ErrNotEnoughTeams = errors.New("at least two teams are required")

// Pairing is one generated fixture between two roster members.
type Pairing struct {
	Team1ID int
	Team2ID int
	Round   int
}

// Result is the outcome of a generation run. Byes lists teams left without
// an opponent in this round.
type Result struct {
	Pairings []Pairing
	Byes     []int
}

type Generator interface {
	Name() string

	// Generate pairs the roster, given as team ids in registration order.
	Generate(teamIDs []int) (*Result, error)
}

const (
	StrategySequential = "sequential"
	StrategyRoundRobin = "round_robin"
)

// ForStrategy resolves a generator by name. The empty string selects the
// default sequential pairing.
func ForStrategy(name string) (Generator, error) {
	switch name {
	case "", StrategySequential:
		return NewSequentialGenerator(), nil
	case StrategyRoundRobin:
		return NewRoundRobinGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown pairing strategy %q", name)
	}
}
