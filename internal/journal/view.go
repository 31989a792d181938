// Package journal derives the displayed list from the live per-owner record
// stream and the user-editable search, category filter and sort order.
package journal

import (
	"sort"
	"strings"
	"sync"

	"plant-journal-be/internal/entity"
)

type SortOption string

const (
	SortDateDesc SortOption = "date_desc" // most recent first, the default
	SortDateAsc  SortOption = "date_asc"
	SortNameAsc  SortOption = "name_asc"
	SortNameDesc SortOption = "name_desc"
)

// ParseSortOption normalizes user input; unknown input falls back to the
// default ordering.
func ParseSortOption(s string) SortOption {
	switch SortOption(strings.ToLower(strings.TrimSpace(s))) {
	case SortDateAsc:
		return SortDateAsc
	case SortNameAsc:
		return SortNameAsc
	case SortNameDesc:
		return SortNameDesc
	default:
		return SortDateDesc
	}
}

// Project computes the displayed list. Pure: the same inputs always produce
// the same output and the input slice is never mutated. Composition order is
// text filter, then category filter, then sort.
func Project(records []*entity.Discovery, query string, category entity.Category, sortOpt SortOption) []*entity.Discovery {
	out := make([]*entity.Discovery, 0, len(records))

	query = strings.ToLower(strings.TrimSpace(query))
	for _, d := range records {
		if query != "" && !matchesQuery(d, query) {
			continue
		}
		if !matchesCategory(d, category) {
			continue
		}
		out = append(out, d)
	}

	switch sortOpt {
	case SortDateAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt < out[j].CapturedAt })
	case SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortNameDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) > strings.ToLower(out[j].Name)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt > out[j].CapturedAt })
	}

	return out
}

func matchesQuery(d *entity.Discovery, query string) bool {
	return strings.Contains(strings.ToLower(d.Name), query) ||
		strings.Contains(strings.ToLower(string(d.Category)), query)
}

func matchesCategory(d *entity.Discovery, category entity.Category) bool {
	if category == "" || category == entity.CategoryAll {
		return true
	}
	return strings.EqualFold(string(d.Category), string(category))
}

// View is one journal screen session: it holds the latest record snapshot
// and the three list inputs, and re-projects whenever any of the four
// change. Updates() always carries the latest projection; a stale pending
// list is dropped when the consumer lags.
type View struct {
	mu       sync.Mutex
	records  []*entity.Discovery
	query    string
	category entity.Category
	sortOpt  SortOption

	out chan []*entity.Discovery
}

func NewView() *View {
	return &View{
		category: entity.CategoryAll,
		sortOpt:  SortDateDesc,
		out:      make(chan []*entity.Discovery, 1),
	}
}

func (v *View) Updates() <-chan []*entity.Discovery {
	return v.out
}

func (v *View) SetRecords(records []*entity.Discovery) {
	v.mu.Lock()
	v.records = records
	v.recompute()
	v.mu.Unlock()
}

func (v *View) SetQuery(query string) {
	v.mu.Lock()
	v.query = query
	v.recompute()
	v.mu.Unlock()
}

func (v *View) SetCategory(category entity.Category) {
	v.mu.Lock()
	v.category = category
	v.recompute()
	v.mu.Unlock()
}

func (v *View) SetSort(sortOpt SortOption) {
	v.mu.Lock()
	v.sortOpt = sortOpt
	v.recompute()
	v.mu.Unlock()
}

// SetInputs applies all three list inputs atomically, for ws control
// messages that change several at once.
func (v *View) SetInputs(query string, category entity.Category, sortOpt SortOption) {
	v.mu.Lock()
	v.query = query
	v.category = category
	v.sortOpt = sortOpt
	v.recompute()
	v.mu.Unlock()
}

// recompute must be called with v.mu held.
func (v *View) recompute() {
	projected := Project(v.records, v.query, v.category, v.sortOpt)
	select {
	case <-v.out:
	default:
	}
	v.out <- projected
}
