// Package persistence keeps the clinician profile and the prescription history
// under two fixed keys of a key-value store.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rxcheck/rxcheck/internal/domain/clinician"
	"github.com/rxcheck/rxcheck/internal/domain/prescription"
	"github.com/rxcheck/rxcheck/internal/platform/kvstore"
)

const (
	KeyUserProfile   = "user_profile"
	KeyPrescriptions = "prescriptions"
)

// Store implements clinician.ProfileStore and prescription.HistoryStore.
type Store struct {
	kv     kvstore.Store
	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

var (
	_ clinician.ProfileStore    = (*Store)(nil)
	_ prescription.HistoryStore = (*Store)(nil)
)

func NewStore(kv kvstore.Store, logger zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		logger: logger,
	}
}

func (s *Store) SaveUserProfile(ctx context.Context, p clinician.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.kv.Set(ctx, KeyUserProfile, b); err != nil {
		s.logger.Error().Err(err).Str("key", KeyUserProfile).Msg("error saving user profile")
		return err
	}
	return nil
}

// GetUserProfile returns nil, nil when no profile is stored. A stored value
// that no longer decodes is logged and treated as absent.
func (s *Store) GetUserProfile(ctx context.Context) (*clinician.Profile, error) {
	b, err := s.kv.Get(ctx, KeyUserProfile)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", KeyUserProfile).Msg("error reading user profile")
		return nil, err
	}
	if isNull(b) {
		return nil, nil
	}
	var p clinician.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		s.logger.Error().Err(err).Str("key", KeyUserProfile).Msg("stored user profile is corrupt")
		return nil, nil
	}
	return &p, nil
}

func (s *Store) IsUserOnboarded(ctx context.Context) (bool, error) {
	p, err := s.GetUserProfile(ctx)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// SavePrescription appends out to the history with a fresh id and the current
// time. The read-modify-write is atomic on backends that support it.
func (s *Store) SavePrescription(ctx context.Context, out prescription.StructuredOutput) (*prescription.SavedPrescription, error) {
	saved := prescription.SavedPrescription{
		StructuredOutput: out,
		ID:               s.newID(),
		Date:             s.now().UTC(),
	}
	err := kvstore.Update(ctx, s.kv, KeyPrescriptions, func(current []byte) ([]byte, error) {
		list, err := decodeList(current)
		if err != nil {
			return nil, err
		}
		return json.Marshal(append(list, saved))
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", KeyPrescriptions).Msg("error saving prescription")
		return nil, err
	}
	return &saved, nil
}

// GetPrescriptions returns the history in insertion order, empty when nothing
// was saved.
func (s *Store) GetPrescriptions(ctx context.Context) ([]prescription.SavedPrescription, error) {
	b, err := s.kv.Get(ctx, KeyPrescriptions)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []prescription.SavedPrescription{}, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", KeyPrescriptions).Msg("error getting prescriptions")
		return nil, err
	}
	list, err := decodeList(b)
	if err != nil {
		s.logger.Error().Err(err).Str("key", KeyPrescriptions).Msg("stored prescriptions are corrupt")
		return []prescription.SavedPrescription{}, nil
	}
	return list, nil
}

// ClearAll removes every key, including ones this package does not own.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("error clearing data")
		return err
	}
	return nil
}

func decodeList(b []byte) ([]prescription.SavedPrescription, error) {
	list := []prescription.SavedPrescription{}
	if isNull(b) {
		return list, nil
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("decode prescriptions: %w", err)
	}
	return list, nil
}

func isNull(b []byte) bool {
	return len(b) == 0 || string(b) == "null"
}
