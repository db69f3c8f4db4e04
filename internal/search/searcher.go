package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrTooManyResults is returned when a page reaches past the result window.
var ErrTooManyResults = errors.New("Too many results to show!")

// ErrUnknownDataType is returned when a search names an unrouted data type.
var ErrUnknownDataType = errors.New("unknown data type")

const (
	defaultPage = 1
	defaultSize = 10
)

// Params are the user-facing list parameters.
type Params struct {
	Query    string
	Tags     []string
	Operator string
	Sort     string
	Page     int
	Size     int
	DataType string
}

// ParamsFromQuery reads list parameters from URL query values.
// Malformed numbers fall back to the defaults.
func ParamsFromQuery(v url.Values) Params {
	p := Params{
		Query:    v.Get("q"),
		Operator: v.Get("operator"),
		Sort:     v.Get("sort"),
		DataType: v.Get("data_type"),
		Page:     atoiOr(v.Get("page"), defaultPage),
		Size:     atoiOr(v.Get("size"), defaultSize),
		Tags:     v["tag"],
	}
	return p
}

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func (p Params) normalized() Params {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	return p
}

// QueryString combines the free-text query with the tag list.
func (p Params) QueryString() string {
	tags := JoinTags(p.Tags, p.Operator)
	q := strings.TrimSpace(p.Query)
	switch {
	case tags == "":
		return q
	case q == "":
		return tags
	default:
		return JoinTags([]string{q, tags}, p.Operator)
	}
}

// Page is one page of search results.
type Page struct {
	Hits       []Hit      `json:"hits"`
	Pagination Pagination `json:"pagination"`
	Links      Links      `json:"links"`
}

// Links are the self/prev/next navigation links for a page.
type Links struct {
	Self string `json:"self"`
	Prev string `json:"prev,omitempty"`
	Next string `json:"next,omitempty"`
}

// Searcher runs holding pen list queries against the routed indices.
type Searcher struct {
	client          IndexClient
	routes          Routes
	maxResultWindow int
}

// NewSearcher creates a Searcher.
func NewSearcher(client IndexClient, routes Routes, maxResultWindow int) *Searcher {
	return &Searcher{client: client, routes: routes, maxResultWindow: maxResultWindow}
}

// MaxResultWindow is the deepest result position a page may reach.
func (s *Searcher) MaxResultWindow() int { return s.maxResultWindow }

// Body builds the search request body for p.
func (s *Searcher) Body(p Params) (map[string]any, error) {
	p = p.normalized()
	// page*size >= window, written so huge pages cannot overflow.
	if p.Page > (s.maxResultWindow-1)/p.Size {
		return nil, ErrTooManyResults
	}
	size := min(p.Size, MaxPageSize)
	return map[string]any{
		"query": BuildQuery(p.QueryString()),
		"sort":  BuildSort(p.Sort),
		"size":  size,
		"from":  (p.Page - 1) * size,
	}, nil
}

// Search runs p. base, when non-nil, is used to build navigation links.
func (s *Searcher) Search(ctx context.Context, p Params, base *url.URL) (*Page, error) {
	p = p.normalized()
	body, err := s.Body(p)
	if err != nil {
		return nil, err
	}

	indices := s.routes.Indices()
	if p.DataType != "" {
		route, ok := s.routes.Lookup(p.DataType)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDataType, p.DataType)
		}
		indices = []string{route.Index}
	}

	res, err := s.client.Search(ctx, indices, body)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Hits:       res.Hits,
		Pagination: Pagination{Page: p.Page, PerPage: p.Size, Total: res.Total},
	}
	if base != nil {
		page.Links = s.links(*base, p, res.Total)
	}
	return page, nil
}

// IDs runs p and returns the matching object ids in result order.
func (s *Searcher) IDs(ctx context.Context, p Params) ([]int64, error) {
	page, err := s.Search(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(page.Hits))
	for _, h := range page.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Searcher) links(base url.URL, p Params, total int64) Links {
	link := func(page int) string {
		v := url.Values{}
		v.Set("page", strconv.Itoa(page))
		v.Set("size", strconv.Itoa(p.Size))
		v.Set("q", p.Query)
		if p.Sort != "" {
			v.Set("sort", p.Sort)
		}
		if p.DataType != "" {
			v.Set("data_type", p.DataType)
		}
		for _, t := range p.Tags {
			v.Add("tag", t)
		}
		if p.Operator != "" {
			v.Set("operator", p.Operator)
		}
		u := base
		u.RawQuery = v.Encode()
		return u.String()
	}

	links := Links{Self: link(p.Page)}
	if p.Page > 1 {
		links.Prev = link(p.Page - 1)
	}
	reach := int64(p.Size) * int64(p.Page)
	if reach < total && reach < int64(s.maxResultWindow) {
		links.Next = link(p.Page + 1)
	}
	return links
}
