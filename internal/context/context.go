package context

import (
	"os"

	"github.com/example/ladder/internal/config"
)

// ActorSource names where a resolved actor came from.
type ActorSource string

const (
	SourceFlag   ActorSource = "flag"
	SourceConfig ActorSource = "config" // includes the LADDER_ACTOR override
	SourceNone   ActorSource = ""
)

// ResolveActor picks the acting employee: an explicit flag wins over the
// configured actor_id.
func ResolveActor(flagValue string, cfg *config.Config) (string, ActorSource) {
	if flagValue != "" {
		return flagValue, SourceFlag
	}
	if cfg != nil && cfg.ActorID != "" {
		return cfg.ActorID, SourceConfig
	}
	return "", SourceNone
}

// LoadConfig resolves the configuration for the current working directory.
func LoadConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}
