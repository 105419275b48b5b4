// Package config loads the engine's storage-strategy configuration (spec
// §6) via spf13/viper, with environment variable overrides under the
// MATCHCORE_ prefix.
package config

import (
	"fmt"

	"matchcore/internal/engine"
	"matchcore/internal/ladder"
	"matchcore/internal/level"

	"github.com/spf13/viper"
)

// Config is the raw, string/number form of engine storage parameters as
// they arrive from file or environment — see Params() for the translated
// form the engine package actually consumes.
type Config struct {
	// MaxDepth reserves capacity for the sorted-array ladder shape
	// (spec §6 "max_depth", default 65536; ignored by the tree shape).
	MaxDepth int `mapstructure:"max_depth"`
	// LadderShape selects the price-ladder storage strategy: "tree" or
	// "sorted_array".
	LadderShape string `mapstructure:"ladder_shape"`
	// Searcher selects the sorted-array search policy: "binary",
	// "branchless_binary", or "linear". Ignored by the tree shape.
	Searcher string `mapstructure:"searcher"`
	// LevelQueueShape selects the per-price-level FIFO container:
	// "linked_list", "deque", "ordered_set", or "multiset".
	LevelQueueShape string `mapstructure:"level_queue_shape"`
	// SlabSize is the resting-order allocator's slots-per-slab (spec
	// §4.C3, default 4096).
	SlabSize int `mapstructure:"slab_size"`
	// ServerAddress and ServerPort configure the TCP front-end.
	ServerAddress string `mapstructure:"server_address"`
	ServerPort    int    `mapstructure:"server_port"`
}

// Defaults matches the spec's stated defaults (§4.C3, §4.C5, §6).
func Defaults() Config {
	return Config{
		MaxDepth:        ladder.DefaultMaxDepth,
		LadderShape:     "tree",
		Searcher:        "binary",
		LevelQueueShape: "linked_list",
		SlabSize:        4096,
		ServerAddress:   "0.0.0.0",
		ServerPort:      9001,
	}
}

// Load reads configuration from (in increasing precedence) built-in
// defaults, an optional config file named matchcore.{yaml,json,toml} on
// the given search paths, and MATCHCORE_-prefixed environment variables.
func Load(searchPaths ...string) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetConfigName("matchcore")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("MATCHCORE")
	v.AutomaticEnv()

	v.SetDefault("max_depth", cfg.MaxDepth)
	v.SetDefault("ladder_shape", cfg.LadderShape)
	v.SetDefault("searcher", cfg.Searcher)
	v.SetDefault("level_queue_shape", cfg.LevelQueueShape)
	v.SetDefault("slab_size", cfg.SlabSize)
	v.SetDefault("server_address", cfg.ServerAddress)
	v.SetDefault("server_port", cfg.ServerPort)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Params translates the loaded Config into the engine.Params the matching
// engine's constructor expects, resolving the shape/searcher name strings
// into their typed enum values. Unrecognized names fall back to the
// tree/binary/linked_list defaults rather than erroring — configuration
// is meant to tune performance characteristics, not gate startup.
func (c Config) Params() engine.Params {
	return engine.Params{
		LadderShape: ladderShape(c.LadderShape),
		Searcher:    searcher(c.Searcher),
		MaxDepth:    c.MaxDepth,
		QueueShape:  queueShape(c.LevelQueueShape),
		SlabSize:    c.SlabSize,
	}
}

func ladderShape(s string) ladder.Shape {
	if s == "sorted_array" {
		return ladder.SortedArray
	}
	return ladder.Tree
}

func searcher(s string) ladder.Searcher {
	switch s {
	case "branchless_binary":
		return ladder.BranchlessBinarySearcher{}
	case "linear":
		return ladder.LinearSearcher{}
	default:
		return ladder.BinarySearcher{}
	}
}

func queueShape(s string) level.Shape {
	switch s {
	case "deque":
		return level.Deque
	case "ordered_set":
		return level.OrderedSet
	case "multiset":
		return level.MultiSet
	default:
		return level.LinkedList
	}
}
