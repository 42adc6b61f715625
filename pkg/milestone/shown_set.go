package milestone

import "encoding/json"

// ShownSet holds the ids of milestones already presented to the user, in the
// order they were shown. Adding an id twice keeps one copy.
type ShownSet struct {
	ids   []string
	index map[string]struct{}
}

func NewShownSet(ids ...string) *ShownSet {
	s := &ShownSet{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add reports whether id was not present before.
func (s *ShownSet) Add(id string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Contains is safe on a nil set.
func (s *ShownSet) Contains(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

func (s *ShownSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

func (s *ShownSet) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.ids...)
}

// Union returns a new set with the ids of s followed by the new ids of other.
func (s *ShownSet) Union(other *ShownSet) *ShownSet {
	union := NewShownSet(s.IDs()...)
	for _, id := range other.IDs() {
		union.Add(id)
	}
	return union
}

func (s *ShownSet) MarshalJSON() ([]byte, error) {
	ids := s.IDs()
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

func (s *ShownSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = *NewShownSet(ids...)
	return nil
}
