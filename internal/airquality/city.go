// Package airquality holds the city catalog and the simulated readings the
// dashboard shows for each city.
package airquality

import "strings"

// City is one monitored city.
type City struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	State      string  `json:"state"`
	AQI        int     `json:"aqi"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Population string  `json:"population"`
}

var catalog = []City{
	{ID: "mum", Name: "Mumbai", State: "Maharashtra", AQI: 142, Lat: 19.07, Lng: 72.87, Population: "20.4M"},
	{ID: "del", Name: "Delhi", State: "Delhi", AQI: 287, Lat: 28.70, Lng: 77.10, Population: "32.9M"},
	{ID: "blr", Name: "Bengaluru", State: "Karnataka", AQI: 89, Lat: 12.97, Lng: 77.59, Population: "12.3M"},
	{ID: "chn", Name: "Chennai", State: "Tamil Nadu", AQI: 112, Lat: 13.08, Lng: 80.27, Population: "10.9M"},
	{ID: "lko", Name: "Lucknow", State: "Uttar Pradesh", AQI: 198, Lat: 26.84, Lng: 80.94, Population: "3.9M"},
	{ID: "ahm", Name: "Ahmedabad", State: "Gujarat", AQI: 156, Lat: 23.02, Lng: 72.57, Population: "8.0M"},
	{ID: "jpr", Name: "Jaipur", State: "Rajasthan", AQI: 134, Lat: 26.91, Lng: 75.78, Population: "3.1M"},
	{ID: "kol", Name: "Kolkata", State: "West Bengal", AQI: 167, Lat: 22.57, Lng: 88.36, Population: "14.8M"},
	{ID: "bpl", Name: "Bhopal", State: "Madhya Pradesh", AQI: 121, Lat: 23.26, Lng: 77.41, Population: "1.9M"},
	{ID: "chd", Name: "Chandigarh", State: "Punjab", AQI: 103, Lat: 30.73, Lng: 76.77, Population: "1.1M"},
	{ID: "hyd", Name: "Hyderabad", State: "Telangana", AQI: 118, Lat: 17.38, Lng: 78.49, Population: "10.5M"},
	{ID: "pne", Name: "Pune", State: "Maharashtra", AQI: 98, Lat: 18.52, Lng: 73.85, Population: "7.4M"},
	{ID: "pat", Name: "Patna", State: "Bihar", AQI: 215, Lat: 25.61, Lng: 85.14, Population: "2.5M"},
	{ID: "var", Name: "Varanasi", State: "Uttar Pradesh", AQI: 178, Lat: 25.32, Lng: 83.01, Population: "1.5M"},
	{ID: "kch", Name: "Kochi", State: "Kerala", AQI: 62, Lat: 9.93, Lng: 76.26, Population: "2.1M"},
	{ID: "guw", Name: "Guwahati", State: "Assam", AQI: 95, Lat: 26.14, Lng: 91.74, Population: "1.1M"},
	{ID: "ind", Name: "Indore", State: "Madhya Pradesh", AQI: 110, Lat: 22.72, Lng: 75.86, Population: "2.2M"},
	{ID: "nag", Name: "Nagpur", State: "Maharashtra", AQI: 126, Lat: 21.15, Lng: 79.09, Population: "2.9M"},
	{ID: "viz", Name: "Visakhapatnam", State: "Andhra Pradesh", AQI: 88, Lat: 17.69, Lng: 83.22, Population: "2.0M"},
	{ID: "cbe", Name: "Coimbatore", State: "Tamil Nadu", AQI: 72, Lat: 11.02, Lng: 76.96, Population: "1.7M"},
	{ID: "srt", Name: "Surat", State: "Gujarat", AQI: 145, Lat: 21.17, Lng: 72.83, Population: "5.6M"},
	{ID: "tvm", Name: "Thiruvananthapuram", State: "Kerala", AQI: 55, Lat: 8.52, Lng: 76.94, Population: "1.0M"},
	{ID: "rch", Name: "Ranchi", State: "Jharkhand", AQI: 132, Lat: 23.34, Lng: 85.31, Population: "1.5M"},
	{ID: "rpr", Name: "Raipur", State: "Chhattisgarh", AQI: 148, Lat: 21.25, Lng: 81.63, Population: "1.2M"},
	{ID: "bbn", Name: "Bhubaneswar", State: "Odisha", AQI: 105, Lat: 20.30, Lng: 85.82, Population: "1.0M"},
}

// Cities returns a copy of the built-in city catalog in display order.
func Cities() []City {
	out := make([]City, len(catalog))
	copy(out, catalog)
	return out
}

// FindCity looks a city up by id or, case-insensitively, by name.
func FindCity(key string) (City, bool) {
	for _, c := range catalog {
		if c.ID == key || strings.EqualFold(c.Name, key) {
			return c, true
		}
	}
	return City{}, false
}

// Level is an AQI category for technical audiences.
type Level struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
}

// LevelFor maps an AQI value to its category.
func LevelFor(aqi int) Level {
	switch {
	case aqi <= 50:
		return Level{Label: "Good", Severity: "safe"}
	case aqi <= 100:
		return Level{Label: "Moderate", Severity: "moderate"}
	case aqi <= 150:
		return Level{Label: "Unhealthy (SG)", Severity: "warning"}
	case aqi <= 200:
		return Level{Label: "Unhealthy", Severity: "danger"}
	case aqi <= 300:
		return Level{Label: "Very Unhealthy", Severity: "severe"}
	default:
		return Level{Label: "Hazardous", Severity: "danger"}
	}
}

// SimpleLevel is an AQI category phrased for the general public.
type SimpleLevel struct {
	Label  string `json:"label"`
	Advice string `json:"advice"`
}

// SimpleLevelFor maps an AQI value to plain-language advice.
func SimpleLevelFor(aqi int) SimpleLevel {
	switch {
	case aqi <= 50:
		return SimpleLevel{Label: "Good", Advice: "Air quality is great! Enjoy outdoor activities."}
	case aqi <= 100:
		return SimpleLevel{Label: "Fair", Advice: "Air is okay. Most people can go outside safely."}
	case aqi <= 150:
		return SimpleLevel{Label: "Poor", Advice: "Sensitive people should limit outdoor time."}
	case aqi <= 200:
		return SimpleLevel{Label: "Bad", Advice: "Reduce outdoor activities. Wear a mask if needed."}
	case aqi <= 300:
		return SimpleLevel{Label: "Very Bad", Advice: "Stay indoors. Close windows. Use air purifiers."}
	default:
		return SimpleLevel{Label: "Dangerous", Advice: "Health emergency! Do not go outside."}
	}
}
