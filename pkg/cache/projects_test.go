package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/models"
)

func TestProjectListCache_NilClientIsPassThrough(t *testing.T) {
	c := NewProjectListCache(nil, 30*time.Second, zap.NewNop())
	ctx := context.Background()

	if _, ok := c.Get(ctx, "any"); ok {
		t.Error("expected miss with nil client")
	}

	// Set and Invalidate must be safe no-ops
	c.Set(ctx, "any", []*models.Project{{ID: uuid.New()}})
	c.Invalidate(ctx)

	if _, ok := c.Get(ctx, "any"); ok {
		t.Error("expected miss after no-op Set")
	}
}
