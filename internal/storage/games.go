package storage

import (
	"path/filepath"
	"time"
)

var (
	fileScores2048 = filepath.Join("game", "2048.json")
	fileProfiles   = filepath.Join("tools", "profile.json")
)

type ScoreEntry struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Score     int    `json:"score"`
	Timestamp string `json:"ts"`
}

func (s *Store) Append2048Score(userID, userName string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var scores []ScoreEntry
	if err := s.read(fileScores2048, &scores); err != nil {
		return err
	}
	scores = append(scores, ScoreEntry{
		UserID:    userID,
		UserName:  userName,
		Score:     score,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return s.write(fileScores2048, scores)
}

func (s *Store) Scores2048() ([]ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var scores []ScoreEntry
	if err := s.read(fileScores2048, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// ProfileSnapshot captures a member's identity at the time of a profile
// command.
type ProfileSnapshot struct {
	UserID      string   `json:"user_id"`
	UserName    string   `json:"user_name"`
	DisplayName string   `json:"display_name"`
	CreatedAt   string   `json:"created_at"`
	JoinedAt    string   `json:"joined_at,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Timestamp   string   `json:"ts"`
}

func (s *Store) SaveProfile(snapshot ProfileSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles := make(map[string]ProfileSnapshot)
	if err := s.read(fileProfiles, &profiles); err != nil {
		return err
	}
	profiles[snapshot.UserID] = snapshot
	return s.write(fileProfiles, profiles)
}

func (s *Store) Profile(userID string) (ProfileSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles := make(map[string]ProfileSnapshot)
	if err := s.read(fileProfiles, &profiles); err != nil {
		return ProfileSnapshot{}, false, err
	}
	snapshot, ok := profiles[userID]
	return snapshot, ok, nil
}
