// internal/workflow/create-point/itemset.go
package createpoint

import "sort"

// ItemSet is the set of selected catalog ids. The zero value is empty and
// ready to use.
type ItemSet struct {
	ids map[int]struct{}
}

func NewItemSet(ids ...int) *ItemSet {
	s := &ItemSet{}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *ItemSet) add(id int) {
	if s.ids == nil {
		s.ids = make(map[int]struct{})
	}
	s.ids[id] = struct{}{}
}

// Toggle inserts id when absent and removes it when present. It reports
// whether id is in the set afterwards.
func (s *ItemSet) Toggle(id int) bool {
	if s.Has(id) {
		delete(s.ids, id)
		return false
	}
	s.add(id)
	return true
}

func (s *ItemSet) Has(id int) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *ItemSet) Len() int {
	return len(s.ids)
}

// Sorted returns the members in ascending order. Never nil.
func (s *ItemSet) Sorted() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (s *ItemSet) Clear() {
	s.ids = nil
}
