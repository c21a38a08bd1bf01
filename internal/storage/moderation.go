package storage

import "time"

const (
	fileGlobalBans  = "global_ban.json"
	fileGlobalMutes = "global_mute.json"
	fileGlobalWarns = "global_warn.json"
	fileGuildMutes  = "mute.json"
	fileGuildWarns  = "warn.json"
)

// Record is a single moderation entry. Expires is RFC 3339 or empty for a
// permanent record.
type Record struct {
	Moderator     string `json:"moderator"`
	ModeratorName string `json:"moderator_name"`
	Reason        string `json:"reason"`
	Timestamp     string `json:"ts"`
	Expires       string `json:"expires,omitempty"`
}

func NewRecord(moderatorID, moderatorName, reason string, days int) Record {
	now := time.Now().UTC()
	rec := Record{
		Moderator:     moderatorID,
		ModeratorName: moderatorName,
		Reason:        reason,
		Timestamp:     now.Format(time.RFC3339),
	}
	if days > 0 {
		rec.Expires = now.Add(time.Duration(days) * 24 * time.Hour).Format(time.RFC3339)
	}
	return rec
}

func (r Record) Expired(now time.Time) bool {
	if r.Expires == "" {
		return false
	}
	expires, err := time.Parse(time.RFC3339, r.Expires)
	if err != nil {
		return false
	}
	return now.After(expires)
}

// GlobalBans returns the live global ban map, pruning expired entries and
// saving the file when anything was dropped.
func (s *Store) GlobalBans() (map[string]Record, error) {
	return s.recordMap(fileGlobalBans)
}

func (s *Store) SetGlobalBan(userID string, rec Record) error {
	return s.putRecord(fileGlobalBans, userID, rec)
}

func (s *Store) RemoveGlobalBan(userID string) (bool, error) {
	return s.deleteRecord(fileGlobalBans, userID)
}

func (s *Store) GlobalMutes() (map[string]Record, error) {
	return s.recordMap(fileGlobalMutes)
}

func (s *Store) SetGlobalMute(userID string, rec Record) error {
	return s.putRecord(fileGlobalMutes, userID, rec)
}

func (s *Store) RemoveGlobalMute(userID string) (bool, error) {
	return s.deleteRecord(fileGlobalMutes, userID)
}

// GlobalWarns returns user ID -> warn history, oldest first.
func (s *Store) GlobalWarns() (map[string][]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	warns := make(map[string][]Record)
	if err := s.read(fileGlobalWarns, &warns); err != nil {
		return nil, err
	}
	return warns, nil
}

func (s *Store) AddGlobalWarn(userID string, rec Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	warns := make(map[string][]Record)
	if err := s.read(fileGlobalWarns, &warns); err != nil {
		return 0, err
	}
	warns[userID] = append(warns[userID], rec)
	if err := s.write(fileGlobalWarns, warns); err != nil {
		return 0, err
	}
	return len(warns[userID]), nil
}

// RemoveGlobalWarn drops the most recent warn and reports how many remain.
func (s *Store) RemoveGlobalWarn(userID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	warns := make(map[string][]Record)
	if err := s.read(fileGlobalWarns, &warns); err != nil {
		return 0, false, err
	}
	history := warns[userID]
	if len(history) == 0 {
		return 0, false, nil
	}
	history = history[:len(history)-1]
	if len(history) == 0 {
		delete(warns, userID)
	} else {
		warns[userID] = history
	}
	if err := s.write(fileGlobalWarns, warns); err != nil {
		return 0, false, err
	}
	return len(history), true, nil
}

// GuildMutes returns guild ID -> user ID -> record, pruning expired mutes.
func (s *Store) GuildMutes() (map[string]map[string]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutes := make(map[string]map[string]Record)
	if err := s.read(fileGuildMutes, &mutes); err != nil {
		return nil, err
	}
	if pruneNested(mutes, time.Now()) {
		if err := s.write(fileGuildMutes, mutes); err != nil {
			return nil, err
		}
	}
	return mutes, nil
}

func (s *Store) SetGuildMute(guildID, userID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutes := make(map[string]map[string]Record)
	if err := s.read(fileGuildMutes, &mutes); err != nil {
		return err
	}
	if mutes[guildID] == nil {
		mutes[guildID] = make(map[string]Record)
	}
	mutes[guildID][userID] = rec
	return s.write(fileGuildMutes, mutes)
}

func (s *Store) RemoveGuildMute(guildID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutes := make(map[string]map[string]Record)
	if err := s.read(fileGuildMutes, &mutes); err != nil {
		return false, err
	}
	if _, ok := mutes[guildID][userID]; !ok {
		return false, nil
	}
	delete(mutes[guildID], userID)
	if len(mutes[guildID]) == 0 {
		delete(mutes, guildID)
	}
	return true, s.write(fileGuildMutes, mutes)
}

func (s *Store) GuildWarns() (map[string]map[string][]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	warns := make(map[string]map[string][]Record)
	if err := s.read(fileGuildWarns, &warns); err != nil {
		return nil, err
	}
	return warns, nil
}

func (s *Store) AddGuildWarn(guildID, userID string, rec Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	warns := make(map[string]map[string][]Record)
	if err := s.read(fileGuildWarns, &warns); err != nil {
		return 0, err
	}
	if warns[guildID] == nil {
		warns[guildID] = make(map[string][]Record)
	}
	warns[guildID][userID] = append(warns[guildID][userID], rec)
	if err := s.write(fileGuildWarns, warns); err != nil {
		return 0, err
	}
	return len(warns[guildID][userID]), nil
}

func (s *Store) RemoveGuildWarn(guildID, userID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	warns := make(map[string]map[string][]Record)
	if err := s.read(fileGuildWarns, &warns); err != nil {
		return 0, false, err
	}
	history := warns[guildID][userID]
	if len(history) == 0 {
		return 0, false, nil
	}
	history = history[:len(history)-1]
	if len(history) == 0 {
		delete(warns[guildID], userID)
		if len(warns[guildID]) == 0 {
			delete(warns, guildID)
		}
	} else {
		warns[guildID][userID] = history
	}
	if err := s.write(fileGuildWarns, warns); err != nil {
		return 0, false, err
	}
	return len(history), true, nil
}

func (s *Store) recordMap(name string) (map[string]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make(map[string]Record)
	if err := s.read(name, &records); err != nil {
		return nil, err
	}
	if pruneRecords(records, time.Now()) {
		if err := s.write(name, records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) putRecord(name, userID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make(map[string]Record)
	if err := s.read(name, &records); err != nil {
		return err
	}
	records[userID] = rec
	return s.write(name, records)
}

func (s *Store) deleteRecord(name, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make(map[string]Record)
	if err := s.read(name, &records); err != nil {
		return false, err
	}
	if _, ok := records[userID]; !ok {
		return false, nil
	}
	delete(records, userID)
	return true, s.write(name, records)
}

func pruneRecords(records map[string]Record, now time.Time) bool {
	changed := false
	for id, rec := range records {
		if rec.Expired(now) {
			delete(records, id)
			changed = true
		}
	}
	return changed
}

func pruneNested(records map[string]map[string]Record, now time.Time) bool {
	changed := false
	for guildID, byUser := range records {
		if pruneRecords(byUser, now) {
			changed = true
		}
		if len(byUser) == 0 {
			delete(records, guildID)
		}
	}
	return changed
}
