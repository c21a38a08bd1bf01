package storage

const (
	fileAnnounceChannels = "channel.json"
	fileJoinChannels     = "join.json"
	fileLeaveChannels    = "leave.json"
	fileBridgeWebhooks   = "bridge_webhooks.json"
	fileRelayWebhooks    = "relay_webhooks.json"
)

// Announce channels map guild ID to the channel broadcasts go to.

func (s *Store) AnnounceChannels() (map[string]string, error) {
	return s.stringMap(fileAnnounceChannels)
}

func (s *Store) SetAnnounceChannel(guildID, channelID string) error {
	return s.putString(fileAnnounceChannels, guildID, channelID)
}

func (s *Store) RemoveAnnounceChannel(guildID string) (bool, error) {
	return s.deleteString(fileAnnounceChannels, guildID)
}

func (s *Store) JoinChannels() (map[string]string, error) {
	return s.stringMap(fileJoinChannels)
}

func (s *Store) SetJoinChannel(guildID, channelID string) error {
	return s.putString(fileJoinChannels, guildID, channelID)
}

func (s *Store) RemoveJoinChannel(guildID string) (bool, error) {
	return s.deleteString(fileJoinChannels, guildID)
}

func (s *Store) LeaveChannels() (map[string]string, error) {
	return s.stringMap(fileLeaveChannels)
}

func (s *Store) SetLeaveChannel(guildID, channelID string) error {
	return s.putString(fileLeaveChannels, guildID, channelID)
}

func (s *Store) RemoveLeaveChannel(guildID string) (bool, error) {
	return s.deleteString(fileLeaveChannels, guildID)
}

// Bridge and relay webhooks map channel ID to webhook URL.

func (s *Store) BridgeWebhooks() (map[string]string, error) {
	return s.stringMap(fileBridgeWebhooks)
}

func (s *Store) SetBridgeWebhook(channelID, url string) error {
	return s.putString(fileBridgeWebhooks, channelID, url)
}

func (s *Store) RemoveBridgeWebhook(channelID string) (bool, error) {
	return s.deleteString(fileBridgeWebhooks, channelID)
}

func (s *Store) RelayWebhooks() (map[string]string, error) {
	return s.stringMap(fileRelayWebhooks)
}

func (s *Store) SetRelayWebhook(channelID, url string) error {
	return s.putString(fileRelayWebhooks, channelID, url)
}

func (s *Store) RemoveRelayWebhook(channelID string) (bool, error) {
	return s.deleteString(fileRelayWebhooks, channelID)
}

func (s *Store) stringMap(name string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make(map[string]string)
	if err := s.read(name, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *Store) putString(name, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make(map[string]string)
	if err := s.read(name, &values); err != nil {
		return err
	}
	values[key] = value
	return s.write(name, values)
}

func (s *Store) deleteString(name, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make(map[string]string)
	if err := s.read(name, &values); err != nil {
		return false, err
	}
	if _, ok := values[key]; !ok {
		return false, nil
	}
	delete(values, key)
	return true, s.write(name, values)
}
