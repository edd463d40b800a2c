package thermostat

import (
	"fmt"
	"math"
	"strings"

	"github.com/muurk/truetemp/internal/netatmo"
)

const (
	// MinTemperature is the lowest accepted temperature in °C
	MinTemperature = -50.0
	// MaxTemperature is the highest accepted temperature in °C
	MaxTemperature = 50.0
)

// ValidateTemperature checks that value is within MinTemperature..MaxTemperature
// inclusive. field names the value in the error message.
func ValidateTemperature(value float64, field string) error {
	if field == "" {
		field = "temperature"
	}
	if math.IsNaN(value) || value < MinTemperature || value > MaxTemperature {
		return netatmo.NewValidationError(fmt.Sprintf(
			"%s must be between %.1f°C and %.1f°C, got %v", field, MinTemperature, MaxTemperature, value))
	}
	return nil
}

// ValidateRoomID rejects blank room IDs
func ValidateRoomID(roomID string) error {
	return validateID(roomID, "room_id")
}

// ValidateHomeID rejects blank home IDs
func ValidateHomeID(homeID string) error {
	return validateID(homeID, "home_id")
}

func validateID(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return netatmo.NewValidationError(field + " cannot be empty")
	}
	return nil
}
