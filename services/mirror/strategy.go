package mirror

import (
	"strings"

	"github.com/pkg/errors"
)

type Strategy string

const (
	// StrategySequential tries mirrors in registry order.
	StrategySequential Strategy = "sequential"
	// StrategyRandom tries mirrors in a random order drawn per call, without repeats.
	StrategyRandom Strategy = "random"
)

func (s Strategy) String() string {
	return string(s)
}

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategySequential:
		return StrategySequential, nil
	case StrategyRandom:
		return StrategyRandom, nil
	}
	return "", errors.Errorf("unknown mirror strategy %q", s)
}

type shuffleFunc func(n int, swap func(i, j int))

// order returns a fresh copy of mirrors arranged according to the strategy.
func (s Strategy) order(mirrors []string, shuffle shuffleFunc) []string {
	out := make([]string, len(mirrors))
	copy(out, mirrors)
	if s == StrategyRandom {
		shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}

// limit truncates candidates to the retry budget. A budget of zero or
// above the pool size means the whole pool.
func limit(candidates []string, budget int) []string {
	if budget > 0 && budget < len(candidates) {
		return candidates[:budget]
	}
	return candidates
}
