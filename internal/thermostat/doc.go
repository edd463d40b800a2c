// Package thermostat reads Netatmo homes and rooms and applies "true
// temperature" calibrations, which tell a thermostat what the room really
// measures so it can correct its own sensor.
//
// The services talk to the API through *netatmo.Client and so inherit its
// re-authentication policy.
package thermostat
