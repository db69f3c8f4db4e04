package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type esRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeCluster answers like an Elasticsearch 8 node.
func fakeCluster(t *testing.T, status int, response string) (*ElasticClient, *[]esRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []esRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := esRequest{Method: r.Method, Path: r.URL.Path}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.Body)
		}
		mu.Lock()
		reqs = append(reqs, rec)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c, err := NewElasticClient(ElasticConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return c, &reqs
}

func TestElasticClient_Index(t *testing.T) {
	c, reqs := fakeCluster(t, http.StatusCreated, `{"result":"created"}`)

	err := c.Index(context.Background(), "holdingpen-hep", "hep", 42, map[string]any{"id": 42})
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/holdingpen-hep/_doc/42", got.Path)
	assert.Equal(t, "hep", got.Body[DocTypeField])
	assert.EqualValues(t, 42, got.Body["id"])
}

func TestElasticClient_IndexError(t *testing.T) {
	c, _ := fakeCluster(t, http.StatusBadRequest, `{"error":"mapper_parsing_exception"}`)

	err := c.Index(context.Background(), "holdingpen-hep", "hep", 1, map[string]any{})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadRequest, te.Status)
	assert.Contains(t, te.Error(), "mapper_parsing_exception")
}

func TestElasticClient_Delete(t *testing.T) {
	c, reqs := fakeCluster(t, http.StatusOK, `{"result":"deleted"}`)

	require.NoError(t, c.Delete(context.Background(), "holdingpen-hep", "hep", 7))
	assert.Equal(t, http.MethodDelete, (*reqs)[0].Method)
	assert.Equal(t, "/holdingpen-hep/_doc/7", (*reqs)[0].Path)
}

func TestElasticClient_DeleteNotFound(t *testing.T) {
	c, _ := fakeCluster(t, http.StatusNotFound, `{"result":"not_found"}`)

	err := c.Delete(context.Background(), "holdingpen-hep", "hep", 7)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestElasticClient_Search(t *testing.T) {
	c, reqs := fakeCluster(t, http.StatusOK, `{
		"hits": {
			"total": {"value": 2, "relation": "eq"},
			"hits": [
				{"_index": "holdingpen-hep", "_id": "3", "_source": {"id": 3}},
				{"_index": "holdingpen-hep", "_id": "4", "_source": {"id": 4}}
			]
		}
	}`)

	res, err := c.Search(context.Background(), []string{"holdingpen-hep"}, map[string]any{"query": BuildQuery("")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, []string{"3", "4"}, res.IDs())
	assert.EqualValues(t, 3, res.Hits[0].Source["id"])

	got := (*reqs)[0]
	assert.Equal(t, "/holdingpen-hep/_search", got.Path)
	assert.Contains(t, got.Body, "query")
}

func TestElasticClient_SearchError(t *testing.T) {
	c, _ := fakeCluster(t, http.StatusInternalServerError, `{"error":"boom"}`)

	_, err := c.Search(context.Background(), []string{"x"}, map[string]any{})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "search", te.Op)
}
