package clinician

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var ErrNotOnboarded = errors.New("clinician profile has not been set up")

type Service struct {
	store  ProfileStore
	logger zerolog.Logger
}

func NewService(store ProfileStore, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Save validates and stores p, replacing any previous profile.
func (s *Service) Save(ctx context.Context, p Profile) (*Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.Normalize()
	if err := s.store.SaveUserProfile(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to save clinician profile")
		return nil, fmt.Errorf("save profile: %w", err)
	}
	s.logger.Info().Str("clinic", p.ClinicName).Msg("clinician profile saved")
	return &p, nil
}

// Get returns the stored profile or ErrNotOnboarded.
func (s *Service) Get(ctx context.Context) (*Profile, error) {
	p, err := s.store.GetUserProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, ErrNotOnboarded
	}
	return p, nil
}

func (s *Service) Onboarded(ctx context.Context) (bool, error) {
	ok, err := s.store.IsUserOnboarded(ctx)
	if err != nil {
		return false, fmt.Errorf("check onboarding: %w", err)
	}
	return ok, nil
}

// Reset erases the profile and every saved prescription.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear local data")
		return fmt.Errorf("clear data: %w", err)
	}
	s.logger.Warn().Msg("all local data cleared")
	return nil
}
