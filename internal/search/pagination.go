package search

// Pagination describes one page over a result set.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// Pages is the total number of pages.
func (p Pagination) Pages() int {
	if p.PerPage <= 0 || p.Total <= 0 {
		return 0
	}
	per := int64(p.PerPage)
	return int((p.Total + per - 1) / per)
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }

func (p Pagination) HasNext() bool { return p.Page < p.Pages() }

// IterPages returns the page numbers to show in a pager. It keeps leftEdge
// pages at the start, rightEdge at the end and a window around the current
// page; a 0 marks each gap.
func (p Pagination) IterPages(leftEdge, leftCurrent, rightCurrent, rightEdge int) []int {
	pages := p.Pages()
	var out []int
	last := 0
	for num := 1; num <= pages; num++ {
		if num <= leftEdge ||
			(num > p.Page-leftCurrent-1 && num < p.Page+rightCurrent) ||
			num > pages-rightEdge {
			if last+1 != num {
				out = append(out, 0)
			}
			out = append(out, num)
			last = num
		}
	}
	return out
}

// Neighbours holds the ids adjacent to the current one in a listing.
type Neighbours struct {
	Prev *int64 `json:"previous"`
	Next *int64 `json:"next"`
}

// PreviousNext finds the ids before and after current in ids. Both are nil
// when current is not listed.
func PreviousNext(ids []int64, current int64) Neighbours {
	for i, id := range ids {
		if id != current {
			continue
		}
		var n Neighbours
		if i > 0 {
			prev := ids[i-1]
			n.Prev = &prev
		}
		if i+1 < len(ids) {
			next := ids[i+1]
			n.Next = &next
		}
		return n
	}
	return Neighbours{}
}
