package record_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/finops-claw-gang/holdingpen/internal/actions"
	"github.com/finops-claw-gang/holdingpen/internal/definitions"
	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/testutil"
)

var testRoutes = search.Routes{
	"hep":     {Index: "holdingpen-hep", DocType: "hep"},
	"authors": {Index: "holdingpen-authors", DocType: "authors"},
}

// countingLookup records every action name the adapter asks for.
type countingLookup struct {
	*actions.Registry
	names []string
}

func (c *countingLookup) Lookup(name string) (actions.Handler, bool) {
	c.names = append(c.names, name)
	return c.Registry.Lookup(name)
}

type harness struct {
	store   *testutil.MemoryStore
	index   *testutil.StubIndex
	queue   *testutil.StubQueue
	defs    *definitions.Registry
	lookups *countingLookup
	adapter *record.Adapter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	defs, err := definitions.NewRegistry(
		definitions.Definition{Class: "article", Name: "HEP article", DataType: "hep"},
		definitions.Definition{Class: "author", Name: "Author", DataType: "authors"},
	)
	require.NoError(t, err)

	st := testutil.NewMemoryStore()
	idx := testutil.NewStubIndex()
	q := testutil.NewStubQueue()

	acts := actions.NewRegistry()
	require.NoError(t, acts.Register(actions.ApprovalName, actions.NewApproval(st, q)))
	lookups := &countingLookup{Registry: acts}

	a := record.NewAdapter(record.Deps{
		Store:       st,
		Index:       idx,
		Definitions: defs,
		Actions:     lookups,
		Queue:       q,
		Routes:      testRoutes,
	})
	st.Subscribe(a.Receivers())
	q.Records = a

	objs, err := testutil.LoadObjects(testutil.FixturesDir())
	require.NoError(t, err)
	st.Seed(objs...)

	return &harness{store: st, index: idx, queue: q, defs: defs, lookups: lookups, adapter: a}
}

func (h *harness) object(t *testing.T, id int64) *domain.WorkflowObject {
	t.Helper()
	obj, err := h.store.Get(context.Background(), id)
	require.NoError(t, err)
	return obj
}

func (h *harness) record(t *testing.T, id int64) *record.Record {
	t.Helper()
	rec, err := h.adapter.Get(context.Background(), id)
	require.NoError(t, err)
	return rec
}
