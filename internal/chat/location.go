package chat

import (
	"fmt"
	"strings"

	"github.com/mattjoyce/airaware/internal/airquality"
)

// maxPreambleZones caps how many zones are summarized in the preamble.
const maxPreambleZones = 5

// LocationContext is the currently selected city and its zone readings. It is
// summarized into a preamble that is prefixed to outgoing user turns only.
type LocationContext struct {
	City  airquality.City
	Zones []airquality.Zone
}

// Preamble renders the location summary sent ahead of every user turn.
func (l LocationContext) Preamble() string {
	zones := l.Zones
	if len(zones) > maxPreambleZones {
		zones = zones[:maxPreambleZones]
	}
	parts := make([]string, 0, len(zones))
	for _, z := range zones {
		parts = append(parts, fmt.Sprintf("%s: AQI %d (%s, %s)", z.Name, z.AQI, z.Trend, z.MainPollutant))
	}
	return fmt.Sprintf("[City: %s, State: %s, Current AQI: %d, Population: %s. Top zones: %s]",
		l.City.Name, l.City.State, l.City.AQI, l.City.Population, strings.Join(parts, "; "))
}

// Outgoing returns the wire content for a user turn displayed as text.
func (l LocationContext) Outgoing(text string) string {
	return l.Preamble() + "\n\n" + text
}
