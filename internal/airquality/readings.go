package airquality

import (
	"fmt"
	"math"
	"math/rand"
)

// Trend is the short-term direction of a zone's AQI.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
)

// Zone is a simulated reading for one sub-zone of a city.
type Zone struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	AQI              int     `json:"aqi"`
	Trend            Trend   `json:"trend"`
	MainPollutant    string  `json:"main_pollutant"`
	ReliabilityScore int     `json:"reliability_score"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

// Alert is a pollution warning for a city.
type Alert struct {
	ID        string `json:"id"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Zone      string `json:"zone"`
	Timeframe string `json:"timeframe"`
}

// TrendPoint is one hourly sample of the intraday trend.
type TrendPoint struct {
	Time      string `json:"time"`
	AQI       int    `json:"aqi"`
	Predicted *int   `json:"predicted,omitempty"`
	PM25      int    `json:"pm25"`
	PM10      int    `json:"pm10"`
	NO2       int    `json:"no2"`
}

var zoneNames = map[string][]string{
	"mum": {"Andheri", "Bandra", "Colaba", "Dadar", "Powai", "Worli", "Malad", "Thane", "Navi Mumbai"},
	"del": {"Connaught Place", "Dwarka", "Rohini", "Saket", "Janakpuri", "Karol Bagh", "Lajpat Nagar", "Nehru Place", "Pitampura"},
	"blr": {"Koramangala", "Whitefield", "Indiranagar", "HSR Layout", "Jayanagar", "Electronic City", "Marathahalli", "Hebbal", "Yelahanka"},
	"hyd": {"Hitech City", "Gachibowli", "Secunderabad", "Kukatpally", "Banjara Hills", "Ameerpet", "Madhapur", "LB Nagar", "Shamshabad"},
	"pne": {"Koregaon Park", "Hinjawadi", "Kothrud", "Viman Nagar", "Hadapsar", "Shivajinagar", "Baner", "Aundh", "Wakad"},
	"pat": {"Patna Junction", "Boring Road", "Kankarbagh", "Rajendra Nagar", "Bailey Road", "Danapur", "Phulwari Sharif", "Digha", "Ashiana"},
	"kch": {"Fort Kochi", "Ernakulam", "Edappally", "Kakkanad", "Vyttila", "Thripunithura", "Aluva", "Kaloor", "Marine Drive"},
}

var defaultZoneNames = []string{"Zone A", "Zone B", "Zone C", "Zone D", "Zone E", "Zone F", "Zone G", "Zone H", "Zone I"}

var pollutants = []string{"PM2.5", "PM10", "NO₂", "SO₂", "O₃", "CO"}

var trends = []Trend{TrendImproving, TrendStable, TrendWorsening}

// 3x3 grid of offsets around the city center.
var zoneOffsets = [9][2]float64{
	{-0.04, -0.04}, {-0.04, 0}, {-0.04, 0.04},
	{0, -0.04}, {0, 0}, {0, 0.04},
	{0.04, -0.04}, {0.04, 0}, {0.04, 0.04},
}

// GenerateZones returns nine jittered zone readings laid out on a grid around
// the city center. Zone AQI stays within ±40 of the city value, floored at 20.
func GenerateZones(city City, rng *rand.Rand) []Zone {
	names, ok := zoneNames[city.ID]
	if !ok {
		names = defaultZoneNames
	}
	base := city.AQI
	if base == 0 {
		base = 100
	}

	zones := make([]Zone, 0, len(names))
	for i, name := range names {
		var off [2]float64
		if i < len(zoneOffsets) {
			off = zoneOffsets[i]
		}
		zones = append(zones, Zone{
			ID:               fmt.Sprintf("%s-z%d", city.ID, i),
			Name:             name,
			AQI:              max(20, base+rng.Intn(80)-40),
			Trend:            trends[rng.Intn(len(trends))],
			MainPollutant:    pollutants[rng.Intn(len(pollutants))],
			ReliabilityScore: 70 + rng.Intn(30),
			Lat:              city.Lat + off[0],
			Lng:              city.Lng + off[1],
		})
	}
	return zones
}

// Alerts returns the standing alerts for a city, most severe first.
func Alerts(city City) []Alert {
	var alerts []Alert
	if city.AQI > 200 {
		alerts = append(alerts, Alert{
			ID:        "a1",
			Severity:  "severe",
			Message:   fmt.Sprintf("Severe pollution expected in %s. Avoid outdoor activities.", city.Name),
			Zone:      "City-wide",
			Timeframe: "Next 6 hours",
		})
	}
	if city.AQI > 150 {
		alerts = append(alerts, Alert{
			ID:        "a2",
			Severity:  "danger",
			Message:   "High pollution spreading to residential areas.",
			Zone:      "Multiple zones",
			Timeframe: "Next 12 hours",
		})
	}
	if city.AQI > 100 {
		alerts = append(alerts, Alert{
			ID:        "a3",
			Severity:  "warning",
			Message:   "Moderate pollution levels rising. Sensitive groups should take precautions.",
			Zone:      "Industrial zone",
			Timeframe: "Next 24 hours",
		})
	}
	return alerts
}

var trendHours = []string{"6AM", "8AM", "10AM", "12PM", "2PM", "4PM", "6PM", "8PM", "10PM", "12AM"}

// DailyTrend returns ten samples across the day. The last three carry a
// predicted value.
func DailyTrend(city City, rng *rand.Rand) []TrendPoint {
	base := city.AQI
	if base == 0 {
		base = 100
	}

	points := make([]TrendPoint, 0, len(trendHours))
	for i, hour := range trendHours {
		variation := math.Sin(float64(i)*0.7)*30 + rng.Float64()*20
		aqi := max(20, int(math.Round(float64(base)+variation)))
		p := TrendPoint{
			Time: hour,
			AQI:  aqi,
			PM25: int(math.Round(float64(aqi)*0.4 + rng.Float64()*15)),
			PM10: int(math.Round(float64(aqi)*0.6 + rng.Float64()*20)),
			NO2:  int(math.Round(20 + rng.Float64()*40)),
		}
		if i >= 7 {
			predicted := int(math.Round(float64(aqi) + rng.Float64()*30 - 10))
			p.Predicted = &predicted
		}
		points = append(points, p)
	}
	return points
}
