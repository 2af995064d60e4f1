// Package chatbot answers environmental questions with canned, data-backed
// replies.  A message is matched against fixed keyword lists to pick one
// intent; the Responder then renders that intent's reply from current
// monitoring data.
package chatbot

import "strings"

// Intent is the topic a chat message is classified into.
type Intent int

const (
	IntentDefault Intent = iota
	IntentGreeting
	IntentAirQuality
	IntentWaterQuality
	IntentLocation
	IntentStatistics
	IntentRecommendation
	IntentTrend
)

var intentNames = map[Intent]string{
	IntentDefault:        "default",
	IntentGreeting:       "greeting",
	IntentAirQuality:     "air_quality",
	IntentWaterQuality:   "water_quality",
	IntentLocation:       "location",
	IntentStatistics:     "statistics",
	IntentRecommendation: "recommendation",
	IntentTrend:          "trend",
}

func (i Intent) String() string {
	if n, ok := intentNames[i]; ok {
		return n
	}
	return "unknown"
}

// rules are tested in order and the first intent with a matching keyword
// wins.  A greeting therefore beats every other topic.
var rules = []struct {
	intent   Intent
	keywords []string
}{
	{IntentGreeting, []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}},
	{IntentAirQuality, []string{"air quality", "aqi", "pm2.5", "pm10", "pollution", "air pollution"}},
	{IntentWaterQuality, []string{"water quality", "river", "marine", "lake", "ph", "dissolved oxygen", "turbidity"}},
	{IntentLocation, []string{"where", "location", "station", "monitoring point", "nearest"}},
	{IntentStatistics, []string{"statistics", "stats", "average", "mean", "total", "count", "how many"}},
	{IntentRecommendation, []string{"recommend", "suggest", "should i", "safe", "advice", "what can i do"}},
	{IntentTrend, []string{"trend", "improving", "getting worse", "change", "over time", "history"}},
}

// Classify returns the intent of message.  Matching is a case-insensitive
// substring test, so "hi" also matches inside longer words.
func Classify(message string) Intent {
	msg := strings.ToLower(message)
	for _, r := range rules {
		if containsAny(msg, r.keywords) {
			return r.intent
		}
	}
	return IntentDefault
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
