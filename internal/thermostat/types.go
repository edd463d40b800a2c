package thermostat

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a Netatmo home or room identifier.
// The API sends room IDs as strings, but older payloads use bare numbers,
// so both decode to the same string form.
type ID string

// UnmarshalJSON accepts a JSON string or number
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// HomesDataResponse is the body of GET /api/homesdata
type HomesDataResponse struct {
	Body struct {
		Homes []Home `json:"homes"`
	} `json:"body"`
	Status     string `json:"status"`
	TimeServer int64  `json:"time_server"`
}

// Home is a home topology entry from homesdata
type Home struct {
	ID    ID         `json:"id"`
	Name  string     `json:"name"`
	Rooms []RoomInfo `json:"rooms"`
}

// RoomInfo is room metadata from homesdata. Names live here, not in homestatus.
type RoomInfo struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// HomeStatusResponse is the body of GET /api/homestatus
type HomeStatusResponse struct {
	Body struct {
		Home *HomeStatus `json:"home"`
	} `json:"body"`
	Status     string `json:"status"`
	TimeServer int64  `json:"time_server"`
}

// HomeStatus is the live state of one home
type HomeStatus struct {
	ID    ID           `json:"id"`
	Rooms []RoomStatus `json:"rooms"`
}

// RoomStatus is the live state of one room. Rooms without a thermostat
// carry no measured temperature.
type RoomStatus struct {
	ID                  ID       `json:"id"`
	MeasuredTemperature *float64 `json:"therm_measured_temperature,omitempty"`
	SetpointTemperature *float64 `json:"therm_setpoint_temperature,omitempty"`
	SetpointMode        string   `json:"therm_setpoint_mode,omitempty"`
}

// Room is a thermostat-equipped room as presented to callers
type Room struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	MeasuredTemperature float64 `json:"measured_temperature"`
}

// TrueTemperatureRequest is the payload of POST /api/truetemperature
type TrueTemperatureRequest struct {
	HomeID               string  `json:"home_id"`
	RoomID               string  `json:"room_id"`
	CurrentTemperature   float64 `json:"current_temperature"`
	CorrectedTemperature float64 `json:"corrected_temperature"`
}

// Result is the outcome of a temperature calibration
type Result struct {
	Status     string `json:"status"`
	TimeServer int64  `json:"time_server,omitempty"`

	// Skipped is set when the room already reads the corrected temperature
	// and no request was sent
	Skipped bool `json:"-"`
}
