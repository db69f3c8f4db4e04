package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// DocTypeField carries the document type inside the document; typed
// indices no longer exist.
const DocTypeField = "_doc_type"

// ElasticConfig configures the Elasticsearch client.
type ElasticConfig struct {
	Addresses []string
	Username  string
	Password  string
	// Transport overrides the HTTP transport, e.g. for SigV4 signing.
	Transport http.RoundTripper
}

// ElasticClient implements IndexClient on Elasticsearch 8.
type ElasticClient struct {
	es *elasticsearch.Client
}

// NewElasticClient creates a client for the given cluster.
func NewElasticClient(cfg ElasticConfig) (*ElasticClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("search: create client: %w", err)
	}
	return &ElasticClient{es: es}, nil
}

// Index writes doc under id, tagging it with docType.
func (c *ElasticClient) Index(ctx context.Context, index, docType string, id int64, doc map[string]any) error {
	body := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		body[k] = v
	}
	body[DocTypeField] = docType

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("search: encode document %d: %w", id, err)
	}

	res, err := c.es.Index(index, bytes.NewReader(payload),
		c.es.Index.WithDocumentID(strconv.FormatInt(id, 10)),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return &TransportError{Op: "index", Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return &TransportError{Op: "index", Status: res.StatusCode, Err: responseError(res)}
	}
	return nil
}

// Delete removes the document with id from index.
func (c *ElasticClient) Delete(ctx context.Context, index, _ string, id int64) error {
	res, err := c.es.Delete(index, strconv.FormatInt(id, 10), c.es.Delete.WithContext(ctx))
	if err != nil {
		return &TransportError{Op: "delete", Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return ErrIndexNotFound
	}
	if res.IsError() {
		return &TransportError{Op: "delete", Status: res.StatusCode, Err: responseError(res)}
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []Hit `json:"hits"`
	} `json:"hits"`
}

// Search runs body against indices.
func (c *ElasticClient) Search(ctx context.Context, indices []string, body map[string]any) (*Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(indices...),
		c.es.Search.WithBody(bytes.NewReader(payload)),
		c.es.Search.WithTrackTotalHits(true),
		c.es.Search.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return nil, &TransportError{Op: "search", Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, &TransportError{Op: "search", Status: res.StatusCode, Err: responseError(res)}
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}
	return &Result{Total: sr.Hits.Total.Value, Hits: sr.Hits.Hits}, nil
}

func responseError(res *esapi.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return errors.New(string(bytes.TrimSpace(b)))
}
