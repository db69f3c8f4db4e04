package verifier_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-claw-gang/holdingpen/internal/config"
	"github.com/finops-claw-gang/holdingpen/internal/holdingpen"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/verifier"
)

func newApp(t *testing.T) *holdingpen.App {
	t.Helper()
	app, err := holdingpen.Build(context.Background(), config.Config{
		Mode:            config.ModeStub,
		MaxResultWindow: 10000,
		BulkBudget:      1,
		BulkWindow:      time.Minute,
	}, nil, nil)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func checker(app *holdingpen.App, window int) *verifier.Checker {
	return verifier.NewChecker(app.Store, app.Index, app.Routes, app.Adapter, window)
}

func TestCheck_Consistent(t *testing.T) {
	app := newApp(t)

	rep, err := checker(app, 10000).Check(context.Background(), "hep")
	require.NoError(t, err)
	assert.True(t, rep.Consistent())
	assert.Equal(t, 3, rep.Checked)
	assert.Equal(t, "holdingpen-hep", rep.Index)
	assert.Equal(t, verifier.RecommendNone, rep.Recommendation)
}

func TestCheck_FindsDrift(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()

	// Missing: drop object 1's document behind the adapter's back.
	require.NoError(t, app.Index.Delete(ctx, "holdingpen-hep", "hep", 1))
	// Stale: object 2's document reports a status the store does not.
	obj, err := app.Store.Get(ctx, 2)
	require.NoError(t, err)
	doc := app.Adapter.Project(obj).IndexDocument()
	doc["_workflow"].(map[string]any)["status"] = "COMPLETED"
	require.NoError(t, app.Index.Index(ctx, "holdingpen-hep", "hep", 2, doc))
	// Orphan: a document with no object.
	require.NoError(t, app.Index.Index(ctx, "holdingpen-hep", "hep", 99, map[string]any{"id": 99}))

	rep, err := checker(app, 10000).Check(ctx, "hep")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, rep.Missing)
	assert.Equal(t, []int64{2}, rep.Stale)
	assert.Equal(t, []int64{99}, rep.Orphans)
	assert.Equal(t, verifier.RecommendReindex, rep.Recommendation)
}

func TestCheck_Truncated(t *testing.T) {
	app := newApp(t)
	require.NoError(t, app.Index.Delete(context.Background(), "holdingpen-hep", "hep", 1))

	rep, err := checker(app, 10).Check(context.Background(), "hep")
	require.NoError(t, err)
	assert.True(t, rep.Truncated)
	assert.Empty(t, rep.Missing, "missing is unknown when the scan is cut short")
}

func TestCheck_UnknownDataType(t *testing.T) {
	app := newApp(t)
	_, err := checker(app, 10000).Check(context.Background(), "conferences")
	assert.ErrorIs(t, err, search.ErrUnknownDataType)
}

func TestServiceVerify(t *testing.T) {
	app := newApp(t)

	reports, err := app.Service.Verify(context.Background(), []string{"hep", "authors"})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	for _, rep := range reports {
		assert.True(t, rep.Consistent(), rep.DataType)
	}

	_, err = app.Service.Verify(context.Background(), nil)
	assert.ErrorIs(t, err, holdingpen.ErrNoDataTypes)
}
