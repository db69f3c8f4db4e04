package rows

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-claw-gang/holdingpen/internal/actions"
	"github.com/finops-claw-gang/holdingpen/internal/definitions"
	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

func setupCache(t *testing.T, opts ...RedisOption) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCache(client, opts...), mr
}

func testObject() *domain.WorkflowObject {
	obj := domain.NewWorkflowObject("hep")
	obj.ID = 7
	obj.Status = domain.StatusHalted
	obj.WorkflowName = "article"
	obj.Data["title"] = "Dark matter at the LHC"
	obj.Modified = time.Date(2026, 9, 1, 8, 5, 0, 0, time.UTC)
	obj.SetAction("approval")
	obj.ExtraData[domain.MessageKey] = "Core article?"
	return obj
}

func newTestFormatter(t *testing.T, cache Cache) *Formatter {
	t.Helper()
	defs, err := definitions.NewRegistry(definitions.Definition{Class: "article", Name: "HEP article", DataType: "hep"})
	require.NoError(t, err)
	acts := actions.NewRegistry()
	require.NoError(t, acts.Register(actions.ApprovalName, actions.NewApproval(nil, nil)))
	return NewFormatter(defs, acts, cache, nil)
}

func TestFormat_BuildsRow(t *testing.T) {
	f := newTestFormatter(t, nil)

	row := f.Format(context.Background(), testObject())
	assert.Equal(t, int64(7), row.ID)
	assert.Equal(t, "HEP article", row.Name)
	assert.Equal(t, "Dark matter at the LHC", row.Title)
	assert.Equal(t, "Core article?", row.Description)
	assert.Equal(t, "2026-09-01T08:05:00Z", row.Date)
	assert.Equal(t, "Awaiting approval", row.Action)
	assert.Equal(t, "HALTED", row.Additional["status"])
	assert.Equal(t, "hep", row.SortData["type"])
}

func TestFormat_UnregisteredWorkflow(t *testing.T) {
	f := newTestFormatter(t, nil)
	obj := testObject()
	obj.WorkflowName = "retired"
	obj.ClearAction()
	delete(obj.Data, "title")
	delete(obj.ExtraData, domain.MessageKey)

	row := f.Format(context.Background(), obj)
	assert.Equal(t, "retired", row.Name)
	assert.Equal(t, "No title available", row.Title)
	assert.Equal(t, "No description available", row.Description)
	assert.Empty(t, row.Action)
}

func TestFormat_UsesFreshCachedRow(t *testing.T) {
	cache, _ := setupCache(t)
	f := newTestFormatter(t, cache)
	ctx := context.Background()
	obj := testObject()

	first := f.Format(ctx, obj)

	// Same modification time: the cached row wins even if data changed.
	obj.Data["title"] = "Edited"
	assert.Equal(t, first, f.Format(ctx, obj))

	// New modification time: the row is rebuilt and re-cached.
	obj.Modified = obj.Modified.Add(time.Minute)
	second := f.Format(ctx, obj)
	assert.Equal(t, "Edited", second.Title)

	cached, ok, err := cache.Get(ctx, obj.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.Date, cached.Date)
}

func TestFormat_CacheUnavailable(t *testing.T) {
	cache, mr := setupCache(t)
	mr.Close()
	f := newTestFormatter(t, cache)

	row := f.Format(context.Background(), testObject())
	assert.Equal(t, "Dark matter at the LHC", row.Title)
}

func TestRedisCache_KeyAndTTL(t *testing.T) {
	cache, mr := setupCache(t, WithPrefix("hp::"), WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, Row{ID: 42, Date: "d"}))
	assert.True(t, mr.Exists("hp::row::42"))
	assert.Equal(t, time.Hour, mr.TTL("hp::row::42"))

	_, ok, err := cache.Get(ctx, 43)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBeforeDelete_DropsCachedRow(t *testing.T) {
	cache, mr := setupCache(t)
	f := newTestFormatter(t, cache)
	ctx := context.Background()
	obj := testObject()

	f.Format(ctx, obj)
	require.True(t, mr.Exists("holdingpen::row::7"))

	f.BeforeDelete(ctx, obj)
	assert.False(t, mr.Exists("holdingpen::row::7"))
}
