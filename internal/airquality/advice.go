package airquality

import "math"

// Action is a recommended mitigation step.
type Action struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

var severeActions = []Action{
	{Title: "Enforce Odd-Even Vehicle Policy", Description: "Restrict private vehicles based on registration number to cut vehicular emissions by ~30%.", Priority: "Immediate"},
	{Title: "Shut Down Non-Essential Industries", Description: "Temporarily halt polluting industrial units until AQI drops below 200.", Priority: "Immediate"},
	{Title: "Ban Firecrackers & Open Burning", Description: "Enforce strict ban on crackers and waste burning, especially with upcoming festivals.", Priority: "Immediate"},
	{Title: "Deploy Anti-Smog Guns", Description: "Activate water sprinklers and anti-smog guns across high-pollution zones.", Priority: "Immediate"},
}

var unhealthyActions = []Action{
	{Title: "Restrict Heavy Diesel Vehicles", Description: "Ban entry of heavy diesel trucks within city limits during peak hours.", Priority: "Recommended"},
	{Title: "Issue Public Health Advisory", Description: "Alert sensitive groups (children, elderly) to stay indoors and wear masks.", Priority: "Recommended"},
	{Title: "Ban Peak-Hour Construction", Description: "Halt construction and demolition activities from 6AM–10AM and 4PM–8PM.", Priority: "Recommended"},
	{Title: "Increase Public Transport", Description: "Deploy additional buses and metro services to reduce private vehicle usage.", Priority: "Recommended"},
}

var moderateActions = []Action{
	{Title: "Monitor Industrial Emissions", Description: "Conduct surprise inspections to ensure compliance with emission standards.", Priority: "Preventive"},
	{Title: "Promote Carpool Campaigns", Description: "Launch public awareness drives for carpooling and public transport adoption.", Priority: "Preventive"},
	{Title: "Road Dust Suppression", Description: "Schedule mechanized sweeping and water sprinkling on major roads.", Priority: "Preventive"},
	{Title: "Festival Preparedness Review", Description: "Coordinate with local bodies for upcoming festival pollution mitigation plans.", Priority: "Preventive"},
}

// RecommendedActions returns the mitigation steps for a city's AQI band.
func RecommendedActions(city City) []Action {
	var actions []Action
	switch {
	case city.AQI > 200:
		actions = severeActions
	case city.AQI > 150:
		actions = unhealthyActions
	default:
		actions = moderateActions
	}
	return append([]Action(nil), actions...)
}

// Scenario adjusts the drivers of a what-if simulation. Each factor ranges
// from -100 to 100; values outside are clamped.
type Scenario struct {
	Traffic    int `json:"traffic"`
	Industrial int `json:"industrial"`
	Weather    int `json:"weather"`
}

// Simulation is the projected AQI under a scenario.
type Simulation struct {
	Scenario  Scenario `json:"scenario"`
	BaseAQI   int      `json:"base_aqi"`
	AQI       int      `json:"aqi"`
	Delta     int      `json:"delta"`
	BaseLevel Level    `json:"base_level"`
	Level     Level    `json:"level"`
}

// Simulate projects baseAQI under s. Traffic weighs 0.3, industry 0.4 and
// wind/rain -0.2 of the base per full step; the result is floored at 10.
func Simulate(baseAQI int, s Scenario) Simulation {
	s.Traffic = clampFactor(s.Traffic)
	s.Industrial = clampFactor(s.Industrial)
	s.Weather = clampFactor(s.Weather)

	base := float64(baseAQI)
	shift := float64(s.Traffic)*0.3*base/100 +
		float64(s.Industrial)*0.4*base/100 +
		float64(s.Weather)*-0.2*base/100
	aqi := max(10, int(math.Round(base+shift)))

	return Simulation{
		Scenario:  s,
		BaseAQI:   baseAQI,
		AQI:       aqi,
		Delta:     aqi - baseAQI,
		BaseLevel: LevelFor(baseAQI),
		Level:     LevelFor(aqi),
	}
}

func clampFactor(v int) int {
	return min(100, max(-100, v))
}
