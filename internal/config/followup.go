package config

import (
	"fmt"
	"time"
)

// FollowUpConfig configures the follow-up context buffer and replay policy.
type FollowUpConfig struct {
	// Capacity is the maximum number of remembered actions.
	Capacity int `yaml:"capacity"`

	// TTL is how long an entry stays replay-eligible.
	TTL Duration `yaml:"ttl"`

	// MaxReplays caps how often a single entry may be replayed.
	MaxReplays int `yaml:"max_replays"`

	// ReplayWindow is the sliding window for the replay-rate check.
	ReplayWindow Duration `yaml:"replay_window"`

	// ConfidenceFloor is the minimum reference confidence below which
	// resolution refuses with "be specific" before any context lookup.
	ConfidenceFloor float64 `yaml:"confidence_floor"`
}

// DefaultFollowUpConfig returns the replay policy defaults.
func DefaultFollowUpConfig() FollowUpConfig {
	return FollowUpConfig{
		Capacity:        10,
		TTL:             Duration(10 * time.Minute),
		MaxReplays:      3,
		ReplayWindow:    Duration(30 * time.Second),
		ConfidenceFloor: 0.6,
	}
}

// Validate rejects values that would unbound the context buffer.
func (c FollowUpConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", c.TTL)
	}
	if c.MaxReplays <= 0 {
		return fmt.Errorf("max_replays must be positive, got %d", c.MaxReplays)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence_floor must be in [0,1], got %f", c.ConfidenceFloor)
	}
	return nil
}
