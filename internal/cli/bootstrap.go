// Package cli provides CLI commands for the ladder application.
package cli

import (
	gocontext "context"
	"fmt"
	"strings"

	ladderctx "github.com/example/ladder/internal/context"
	"github.com/example/ladder/internal/ctxutil"
	"github.com/example/ladder/internal/wire"
)

// globalActorID stores the resolved actor for the current CLI invocation.
// Set once at startup by Bootstrap().
var globalActorID string

// Bootstrap resolves configuration and the acting employee. Should be called
// once at CLI startup in PersistentPreRunE.
func Bootstrap(actorFlag, dbFlag string) error {
	cfg, err := ladderctx.LoadConfig()
	if err != nil {
		return err
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	globalActorID, _ = ladderctx.ResolveActor(actorFlag, cfg)
	wire.SetConfig(cfg)
	return nil
}

// GetActorID returns the stored actor ID from CLI startup.
func GetActorID() string {
	return globalActorID
}

// NewContext creates a context.Background() with the current actor ID embedded.
// CLI commands should use this instead of context.Background() directly.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if globalActorID != "" {
		return ctxutil.WithActorID(ctx, globalActorID)
	}
	return ctx
}

// requireActor fails commands that act on someone's behalf when no actor
// was configured.
func requireActor() error {
	if globalActorID == "" {
		return fmt.Errorf("no actor: pass --actor, set actor_id in .ladder/config.yaml, or export LADDER_ACTOR")
	}
	return nil
}

// parseLevel splits "JOB-TITLE/GRADE".
func parseLevel(s string) (jobTitleID, gradeID string, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid level %q: expected JOB-TITLE/GRADE", s)
	}
	return parts[0], parts[1], nil
}
