package script

import (
	"fmt"
	"time"
)

// Config describes a script-defined unit.
type Config struct {
	// Source is the JavaScript source. It is evaluated as an expression
	// with an `inputs` object in scope and, for producing units, must
	// evaluate to an object whose keys cover the declared output ports.
	Source string

	// Inputs declares the unit's input port names. Must be empty for a
	// producer.
	Inputs []string

	// Outputs declares the unit's output port names. Must be empty for
	// a sink.
	Outputs []string

	// Timeout bounds a single evaluation. Defaults to 5 seconds.
	Timeout time.Duration
}

// ApplyDefaults sets default values for unset configuration fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("script source is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
