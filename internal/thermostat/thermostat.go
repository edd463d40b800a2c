package thermostat

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/truetemp/internal/logging"
	"github.com/muurk/truetemp/internal/netatmo"
)

const (
	// Tolerance is the difference in °C below which a room already counts as calibrated
	Tolerance = 0.1

	// LargeDifference is the difference in °C above which a calibration is logged as suspicious
	LargeDifference = 10.0
)

// Service lists thermostat rooms and applies temperature calibrations
type Service struct {
	api   API
	homes *HomeService
}

// New creates a Service on top of an API client.
// defaultHomeID is used when a call does not name a home; empty means the
// first home of the account.
func New(api API, defaultHomeID string) *Service {
	return &Service{
		api:   api,
		homes: NewHomeService(api, defaultHomeID),
	}
}

// Homes returns the underlying HomeService
func (s *Service) Homes() *HomeService {
	return s.homes
}

// ListThermostatRooms returns the rooms of a home that report a measured
// temperature. An empty homeID selects the default home.
func (s *Service) ListThermostatRooms(ctx context.Context, homeID string) ([]Room, error) {
	homeID, err := s.homes.resolveHomeID(ctx, homeID)
	if err != nil {
		return nil, err
	}

	names, err := s.homes.roomNames(ctx, homeID)
	if err != nil {
		return nil, err
	}

	status, err := s.homes.HomeStatus(ctx, homeID)
	if err != nil {
		return nil, err
	}
	if status.Body.Home == nil {
		return nil, netatmo.NewAPIError(0, "Failed to parse API response")
	}

	rooms := make([]Room, 0, len(status.Body.Home.Rooms))
	for _, rs := range status.Body.Home.Rooms {
		if rs.MeasuredTemperature == nil {
			continue
		}
		id := string(rs.ID)
		name, ok := names[id]
		if !ok {
			name = "Room " + id
		}
		rooms = append(rooms, Room{
			ID:                  id,
			Name:                name,
			MeasuredTemperature: *rs.MeasuredTemperature,
		})
	}

	logging.Debug("Listed thermostat rooms",
		zap.String("home_id", homeID),
		zap.Int("rooms", len(rooms)),
	)
	return rooms, nil
}

// ResolveRoom finds a thermostat room by ID or by name. An ID wins when both
// are given and is returned without a lookup. Names match case-insensitively.
func (s *Service) ResolveRoom(ctx context.Context, roomID, roomName, homeID string) (Room, error) {
	if roomID != "" {
		if err := ValidateRoomID(roomID); err != nil {
			return Room{}, err
		}
		return Room{ID: roomID, Name: roomID}, nil
	}

	if strings.TrimSpace(roomName) == "" {
		return Room{}, netatmo.NewValidationError("either room_id or room_name is required")
	}

	rooms, err := s.ListThermostatRooms(ctx, homeID)
	if err != nil {
		return Room{}, err
	}
	for _, room := range rooms {
		if strings.EqualFold(room.Name, strings.TrimSpace(roomName)) {
			return room, nil
		}
	}
	return Room{}, netatmo.NewRoomNameNotFoundError(strings.TrimSpace(roomName))
}

// SetRoomTemperature calibrates a room so that it reads corrected °C.
// The call is skipped when the room already reads within Tolerance of it.
func (s *Service) SetRoomTemperature(ctx context.Context, roomID string, corrected float64, homeID string) (*Result, error) {
	if err := ValidateRoomID(roomID); err != nil {
		return nil, err
	}
	if err := ValidateTemperature(corrected, "corrected_temperature"); err != nil {
		return nil, err
	}

	homeID, err := s.homes.resolveHomeID(ctx, homeID)
	if err != nil {
		return nil, err
	}

	roomName := roomID
	if names, err := s.homes.roomNames(ctx, homeID); err != nil {
		logging.Debug("Could not fetch room name", zap.Error(err))
	} else if name, ok := names[roomID]; ok {
		roomName = name
	}

	status, err := s.homes.HomeStatus(ctx, homeID)
	if err != nil {
		return nil, err
	}
	if status.Body.Home == nil {
		logging.Error("Home status has no home", zap.String("home_id", homeID))
		return nil, netatmo.NewRoomNotFoundError(roomID)
	}

	var current *float64
	for _, rs := range status.Body.Home.Rooms {
		if string(rs.ID) == roomID {
			current = rs.MeasuredTemperature
			break
		}
	}
	if current == nil {
		logging.Error("Room not found in home status", zap.String("room_id", roomID))
		return nil, netatmo.NewRoomNotFoundError(roomID)
	}

	logging.Info("Found room",
		zap.String("room", roomName),
		zap.Float64("current", *current),
		zap.Float64("target", corrected),
	)

	diff := math.Abs(*current - corrected)
	if diff < Tolerance {
		logging.Info("Room already at target temperature, skipping",
			zap.String("room", roomName),
			zap.Float64("current", *current),
		)
		return &Result{Status: "ok", TimeServer: status.TimeServer, Skipped: true}, nil
	}

	if diff > LargeDifference {
		logging.Warn(fmt.Sprintf("Large temperature difference detected: %.1f°C", diff),
			zap.String("room", roomName),
			zap.Float64("current", *current),
			zap.Float64("corrected", corrected),
		)
	}

	req := TrueTemperatureRequest{
		HomeID:               homeID,
		RoomID:               roomID,
		CurrentTemperature:   *current,
		CorrectedTemperature: corrected,
	}

	var result Result
	if err := s.api.PostInto(ctx, netatmo.TrueTemperaturePath, nil, req, &result); err != nil {
		return nil, err
	}

	logging.Info("Set room temperature",
		zap.String("room", roomName),
		zap.Float64("corrected", corrected),
	)
	return &result, nil
}
