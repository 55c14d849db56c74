// Package idgen allocates history entry ids.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog/log"
)

// Generator returns a new id on every call. Ids from one generator are
// strictly increasing.
type Generator interface {
	Next() int64
}

// Sequence yields 1, 2, 3, ...
type Sequence struct {
	last atomic.Int64
}

// NewSequence creates a sequence starting at 1
func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Snowflake yields time-ordered 63-bit ids.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a snowflake generator for the given node (0-1023).
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}

	log.Info().Int64("node_id", nodeID).Msg("Snowflake id generator initialized")

	return &Snowflake{node: node}, nil
}

func (s *Snowflake) Next() int64 {
	return s.node.Generate().Int64()
}

// New picks a generator by name: "sequence" (default) or "snowflake".
func New(kind string, nodeID int64) (Generator, error) {
	switch kind {
	case "", "sequence":
		return NewSequence(), nil
	case "snowflake":
		return NewSnowflake(nodeID)
	default:
		return nil, fmt.Errorf("unknown id generator: %q", kind)
	}
}
