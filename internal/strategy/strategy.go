// Package strategy defines the Strategy interface for signal-generating
// trading strategies and provides a Registry for managing multiple strategy
// implementations.
package strategy

import (
	"sort"

	"macross/internal/domain"
)

// Strategy is the interface that all trading strategies must implement.
// Generate must be a pure function of the price series: Signals[i] may
// depend only on prices[0..i], never on later bars.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Generate produces a position signal series aligned 1:1 with the price
	// series.
	Generate(prices domain.PriceSeries) (domain.Signals, error)
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry, keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name. The second return value indicates whether
// the strategy was found.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
