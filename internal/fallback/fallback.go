// Package fallback runs an ordered list of extraction strategies and returns
// the first one that succeeds.
package fallback

import (
	"github.com/rs/zerolog/log"
)

// Strategy is one attempt at producing a T from raw input.
type Strategy[T any] struct {
	Name string
	Try  func(raw string) (T, bool)
}

// Chain tries each strategy in order. Final is used when every strategy
// misses, so Run always produces a value.
type Chain[T any] struct {
	Strategies []Strategy[T]
	Final      func(raw string) T
}

// New creates a chain ending in final.
func New[T any](final func(raw string) T, strategies ...Strategy[T]) *Chain[T] {
	return &Chain[T]{
		Strategies: strategies,
		Final:      final,
	}
}

// Run returns the first successful strategy's value and its name. It returns
// "passthrough" as the name when Final was used.
func (c *Chain[T]) Run(raw string) (T, string) {
	for _, s := range c.Strategies {
		if v, ok := s.Try(raw); ok {
			return v, s.Name
		}
		log.Debug().Str("strategy", s.Name).Msg("Parse strategy missed")
	}
	return c.Final(raw), "passthrough"
}
