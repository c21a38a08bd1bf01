package storage

const fileRelayState = "number_relay_state.json"

// RelayState is the shared counter of the number relay game.
type RelayState struct {
	CurrentNumber int    `json:"current_number"`
	LastUserID    string `json:"last_user_id"`
}

func DefaultRelayState() RelayState {
	return RelayState{CurrentNumber: 1}
}

// RelayState reloads the state from disk. A missing or corrupt file yields
// the default so the game restarts at 1 instead of failing.
func (s *Store) RelayState() RelayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := DefaultRelayState()
	if err := s.read(fileRelayState, &state); err != nil {
		return DefaultRelayState()
	}
	if state.CurrentNumber < 1 {
		state.CurrentNumber = 1
	}
	return state
}

func (s *Store) SaveRelayState(state RelayState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(fileRelayState, state)
}
