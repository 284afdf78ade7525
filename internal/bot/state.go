package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"brochure-bot/pkg/redis"
)

// UserState is the dialog state of one chat, kept in Redis for the session
// TTL. ColorSpec holds the raw page list text; it is re-parsed on every
// computation so the breakdown is always derived from the inputs wholesale.
type UserState struct {
	Step        string `json:"step"`
	Pages       int    `json:"pages"`
	ColorSpec   string `json:"color_spec"`
	Copies      int    `json:"copies"`
	A3          bool   `json:"a3"`
	PhoneNumber string `json:"phone_number"`
}

type StateStorage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStateStorage(redis *redis.Client, ttl time.Duration) *StateStorage {
	return &StateStorage{
		redis: redis,
		ttl:   ttl,
	}
}

func (s *StateStorage) Save(ctx context.Context, chatID int64, state UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := s.redis.Set(ctx, getStateKey(chatID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *StateStorage) Get(ctx context.Context, chatID int64) (UserState, error) {
	data, err := s.redis.Get(ctx, getStateKey(chatID))
	if err != nil {
		return UserState{}, fmt.Errorf("failed to get state: %w", err)
	}

	var state UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return UserState{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, nil
}

func (s *StateStorage) Clear(ctx context.Context, chatID int64) error {
	if err := s.redis.Del(ctx, getStateKey(chatID)); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

func (s *StateStorage) SetStep(ctx context.Context, chatID int64, step string) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	state.Step = step
	return s.Save(ctx, chatID, state)
}

func (s *StateStorage) SetPages(ctx context.Context, chatID int64, pages int) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	state.Pages = pages
	return s.Save(ctx, chatID, state)
}

func (s *StateStorage) SetColorSpec(ctx context.Context, chatID int64, spec string) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	state.ColorSpec = spec
	return s.Save(ctx, chatID, state)
}

func (s *StateStorage) SetCopies(ctx context.Context, chatID int64, copies int) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	state.Copies = copies
	return s.Save(ctx, chatID, state)
}

func (s *StateStorage) SetFormat(ctx context.Context, chatID int64, a3 bool) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	state.A3 = a3
	return s.Save(ctx, chatID, state)
}

func (s *StateStorage) SetPhoneNumber(ctx context.Context, chatID int64, phone string) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	state.PhoneNumber = phone
	return s.Save(ctx, chatID, state)
}

func getStateKey(chatID int64) string {
	return fmt.Sprintf("state:%d", chatID)
}
