package storage

import (
	"fmt"

	json "github.com/goccy/go-json"
)

const fileRandomTexts = "random-text.json"

// RandomTexts loads the random text pool. The file holds either a plain list
// or a map of category to list; a plain list is filed under the empty
// category so callers see one shape.
func (s *Store) RandomTexts() (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var raw json.RawMessage
	if err := s.read(fileRandomTexts, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return map[string][]string{}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return map[string][]string{"": list}, nil
	}
	byCategory := make(map[string][]string)
	if err := json.Unmarshal(raw, &byCategory); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileRandomTexts, err)
	}
	return byCategory, nil
}
