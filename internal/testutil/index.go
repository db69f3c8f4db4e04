package testutil

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/finops-claw-gang/holdingpen/internal/search"
)

// IndexCall records one write or delete against StubIndex.
type IndexCall struct {
	Index   string
	DocType string
	ID      int64
	Doc     map[string]any
}

// StubIndex satisfies search.IndexClient in memory. Search supports
// match_all and a case-insensitive substring form of query_string.
type StubIndex struct {
	mu   sync.Mutex
	docs map[string]map[int64]map[string]any

	Indexed []IndexCall
	Deleted []IndexCall

	IndexErr  error
	DeleteErr error
	SearchErr error
}

func NewStubIndex() *StubIndex {
	return &StubIndex{docs: make(map[string]map[int64]map[string]any)}
}

func (s *StubIndex) Index(_ context.Context, index, docType string, id int64, doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Indexed = append(s.Indexed, IndexCall{Index: index, DocType: docType, ID: id, Doc: doc})
	if s.IndexErr != nil {
		return s.IndexErr
	}
	if s.docs[index] == nil {
		s.docs[index] = make(map[int64]map[string]any)
	}
	s.docs[index][id] = doc
	return nil
}

func (s *StubIndex) Delete(_ context.Context, index, docType string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, IndexCall{Index: index, DocType: docType, ID: id})
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.docs[index][id]; !ok {
		return search.ErrIndexNotFound
	}
	delete(s.docs[index], id)
	return nil
}

// Doc returns the stored document, or nil.
func (s *StubIndex) Doc(index string, id int64) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[index][id]
}

func (s *StubIndex) Search(_ context.Context, indices []string, body map[string]any) (*search.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SearchErr != nil {
		return nil, s.SearchErr
	}

	term := ""
	if q, ok := body["query"].(map[string]any); ok {
		if qs, ok := q["query_string"].(map[string]any); ok {
			term, _ = qs["query"].(string)
		}
	}
	term = strings.ToLower(term)

	var hits []search.Hit
	for _, index := range indices {
		for id, doc := range s.docs[index] {
			if term != "" {
				raw, _ := json.Marshal(doc)
				if !strings.Contains(strings.ToLower(string(raw)), term) {
					continue
				}
			}
			hits = append(hits, search.Hit{ID: strconv.FormatInt(id, 10), Index: index, Source: doc})
		}
	}
	slices.SortFunc(hits, func(a, b search.Hit) int {
		x, _ := strconv.ParseInt(a.ID, 10, 64)
		y, _ := strconv.ParseInt(b.ID, 10, 64)
		return cmp.Compare(x, y)
	})

	total := int64(len(hits))
	from, _ := body["from"].(int)
	size, ok := body["size"].(int)
	if !ok {
		size = len(hits)
	}
	from = min(from, len(hits))
	end := min(from+size, len(hits))
	return &search.Result{Total: total, Hits: hits[from:end]}, nil
}

var _ search.IndexClient = (*StubIndex)(nil)
