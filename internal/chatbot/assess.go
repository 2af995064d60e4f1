package chatbot

import "math"

// AirBand is the qualitative level of an AQI value.
type AirBand string

const (
	AirGood      AirBand = "Good"
	AirModerate  AirBand = "Moderate"
	AirSensitive AirBand = "Unhealthy for Sensitive Groups"
	AirUnhealthy AirBand = "Unhealthy"
)

// ClassifyAQI maps an AQI value onto its band: up to 50 is Good, up to 100
// Moderate, up to 150 Unhealthy for Sensitive Groups, above that Unhealthy.
func ClassifyAQI(aqi int) AirBand {
	switch {
	case aqi > 150:
		return AirUnhealthy
	case aqi > 100:
		return AirSensitive
	case aqi > 50:
		return AirModerate
	}
	return AirGood
}

// HealthAdvice is the advice shown next to the band.
func (b AirBand) HealthAdvice() string {
	switch b {
	case AirUnhealthy:
		return "Everyone may begin to experience health effects. Members of sensitive groups may experience more serious health effects. Consider limiting prolonged outdoor activities."
	case AirSensitive:
		return "Members of sensitive groups may experience health effects. The general public is less likely to be affected."
	case AirModerate:
		return "Air quality is acceptable. However, there may be a risk for some people, particularly those who are unusually sensitive to air pollution."
	}
	return "Air quality is satisfactory, and air pollution poses little or no risk."
}

// Water quality thresholds.
const (
	PHMin         = 6.5
	PHMax         = 8.5
	OxygenLow     = 5.0
	OxygenHealthy = 6.0
)

// WaterStatus is the qualitative assessment of a water reading.
type WaterStatus string

const (
	WaterGood     WaterStatus = "Good"
	WaterModerate WaterStatus = "Moderate"
	WaterPoor     WaterStatus = "Poor"
)

// AssessWater rates a pH and dissolved oxygen (mg/L) pair.  pH outside
// [6.5, 8.5] is Moderate; oxygen below 5 is Poor whatever the pH.  A NaN
// oxygen value (no readings) never triggers the oxygen rule.
func AssessWater(ph, oxygen float64) WaterStatus {
	status := WaterGood
	if ph < PHMin || ph > PHMax {
		status = WaterModerate
	}
	if oxygen < OxygenLow {
		status = WaterPoor
	}
	return status
}

// Summary is the status with its reason, as shown in replies.
func (s WaterStatus) Summary() string {
	switch s {
	case WaterModerate:
		return "Moderate - pH levels outside optimal range"
	case WaterPoor:
		return "Poor - Low dissolved oxygen levels"
	}
	return string(s)
}

// WaterAdvice explains a pH and dissolved oxygen pair in one sentence.
func WaterAdvice(ph, oxygen float64) string {
	switch {
	case ph >= PHMin && ph <= PHMax && oxygen >= OxygenHealthy:
		return "Water quality parameters are within healthy ranges, indicating good conditions for aquatic life."
	case oxygen < OxygenLow:
		return "Dissolved oxygen levels are low, which may stress aquatic life. This could indicate pollution or eutrophication."
	case ph < PHMin:
		return "Water is slightly acidic. This may affect aquatic ecosystems and could indicate pollution sources."
	case ph > PHMax:
		return "Water is slightly alkaline. Monitoring is recommended to ensure ecosystem balance."
	}
	return "Water quality parameters are generally acceptable but continue monitoring is recommended."
}

// mean averages the non-nil values.  ok is false when there are none.
func mean(vals []*float64) (avg float64, ok bool) {
	var sum float64
	n := 0
	for _, v := range vals {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// roundTo rounds x to the given number of decimal places.
func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
