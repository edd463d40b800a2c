package thermostat

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/muurk/truetemp/internal/logging"
	"github.com/muurk/truetemp/internal/netatmo"
)

// API is the part of *netatmo.Client the services use
type API interface {
	GetInto(ctx context.Context, path string, params url.Values, out interface{}) error
	PostInto(ctx context.Context, path string, params url.Values, body, out interface{}) error
}

// HomeService reads home topology and live status
type HomeService struct {
	api           API
	defaultHomeID string
}

// NewHomeService creates a HomeService. defaultHomeID may be empty, in which
// case the first home of the account is the default.
func NewHomeService(api API, defaultHomeID string) *HomeService {
	return &HomeService{api: api, defaultHomeID: defaultHomeID}
}

// HomesData returns the homes of the account, restricted to homeID when set
func (s *HomeService) HomesData(ctx context.Context, homeID string) (*HomesDataResponse, error) {
	var params url.Values
	if homeID != "" {
		params = url.Values{"home_id": {homeID}}
	}

	var resp HomesDataResponse
	if err := s.api.GetInto(ctx, netatmo.HomesDataPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HomeStatus returns the live status of a home
func (s *HomeService) HomeStatus(ctx context.Context, homeID string) (*HomeStatusResponse, error) {
	if err := ValidateHomeID(homeID); err != nil {
		return nil, err
	}

	var resp HomeStatusResponse
	if err := s.api.GetInto(ctx, netatmo.HomeStatusPath, url.Values{"home_id": {homeID}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DefaultHomeID returns the configured default home, or the first home of
// the account when none is configured
func (s *HomeService) DefaultHomeID(ctx context.Context) (string, error) {
	if s.defaultHomeID != "" {
		return s.defaultHomeID, nil
	}

	data, err := s.HomesData(ctx, "")
	if err != nil {
		return "", err
	}
	if len(data.Body.Homes) == 0 || data.Body.Homes[0].ID == "" {
		return "", netatmo.NewHomeNotFoundError("")
	}

	homeID := string(data.Body.Homes[0].ID)
	logging.Debug("Using first home as default", zap.String("home_id", homeID))
	return homeID, nil
}

// resolveHomeID validates an explicit home ID or falls back to the default
func (s *HomeService) resolveHomeID(ctx context.Context, homeID string) (string, error) {
	if homeID == "" {
		return s.DefaultHomeID(ctx)
	}
	if err := ValidateHomeID(homeID); err != nil {
		return "", err
	}
	return homeID, nil
}

// roomNames maps room IDs to names for homeID
func (s *HomeService) roomNames(ctx context.Context, homeID string) (map[string]string, error) {
	data, err := s.HomesData(ctx, homeID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, home := range data.Body.Homes {
		if string(home.ID) != homeID {
			continue
		}
		for _, room := range home.Rooms {
			if room.Name != "" {
				names[string(room.ID)] = room.Name
			}
		}
	}
	return names, nil
}
