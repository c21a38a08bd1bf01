package storage

const filePolls = "polls.json"

// Poll is a persisted poll. Votes maps voter ID to chosen option indexes;
// single-choice polls keep at most one index per voter.
type Poll struct {
	ID          string           `json:"id"`
	GuildID     string           `json:"guild_id"`
	ChannelID   string           `json:"channel_id"`
	MessageID   string           `json:"message_id"`
	CreatorID   string           `json:"creator_id"`
	CreatorName string           `json:"creator_name"`
	Question    string           `json:"question"`
	Options     []string         `json:"options"`
	Multi       bool             `json:"multi"`
	Anonymous   bool             `json:"anonymous"`
	Votes       map[string][]int `json:"votes"`
	CreatedAt   string           `json:"created_at"`
	ExpiresAt   string           `json:"expires_at,omitempty"`
	Closed      bool             `json:"closed"`
}

func (s *Store) Polls() (map[string]Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	polls := make(map[string]Poll)
	if err := s.read(filePolls, &polls); err != nil {
		return nil, err
	}
	return polls, nil
}

func (s *Store) Poll(id string) (Poll, bool, error) {
	polls, err := s.Polls()
	if err != nil {
		return Poll{}, false, err
	}
	poll, ok := polls[id]
	return poll, ok, nil
}

func (s *Store) SavePoll(poll Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	polls := make(map[string]Poll)
	if err := s.read(filePolls, &polls); err != nil {
		return err
	}
	polls[poll.ID] = poll
	return s.write(filePolls, polls)
}

func (s *Store) DeletePoll(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	polls := make(map[string]Poll)
	if err := s.read(filePolls, &polls); err != nil {
		return false, err
	}
	if _, ok := polls[id]; !ok {
		return false, nil
	}
	delete(polls, id)
	return true, s.write(filePolls, polls)
}
