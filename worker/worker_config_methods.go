package worker

import (
	"fmt"

	"github.com/imdario/mergo"
)

func (c *Config) CopyFrom(other *Config) {
	c.Concurrency = other.Concurrency
	c.MaxThroughput = other.MaxThroughput

	c.Logger = other.Logger
}

// Merge overwrites the fields of c with all non-zero fields of other.
func (c *Config) Merge(other *Config) *Config {
	// Interfaces are kept out of mergo, it would merge into the value pointed
	// to by c.Logger.
	values := *other
	values.Logger = nil

	err := mergo.Merge(c, &values, mergo.WithOverride)
	if err != nil {
		panic(fmt.Sprintf("worker: merge config: %v", err))
	}

	if other.Logger != nil {
		c.Logger = other.Logger
	}

	return c
}

func (c *Config) Clone() *Config {
	config := &Config{}
	config.CopyFrom(c)
	return config
}
