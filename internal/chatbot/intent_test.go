package chatbot_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/iliyamo/envirowatch/internal/chatbot"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    chatbot.Intent
	}{
		{"greeting", "Hello", chatbot.IntentGreeting},
		{"greeting mixed case", "GOOD MORNING team", chatbot.IntentGreeting},
		{"air quality", "What is the AQI today?", chatbot.IntentAirQuality},
		{"pm2.5", "current pm2.5 level", chatbot.IntentAirQuality},
		{"pollution", "Any pollution around Klang?", chatbot.IntentAirQuality},
		{"water quality river", "Is the river clean now", chatbot.IntentWaterQuality},
		{"dissolved oxygen", "dissolved oxygen at the lake", chatbot.IntentWaterQuality},
		{"location", "Where are your stations located?", chatbot.IntentLocation},
		{"statistics", "Give me the numbers: total count", chatbot.IntentStatistics},
		{"recommendation", "Is it safe to go out for a run", chatbot.IntentRecommendation},
		{"trend", "Are levels improving over time", chatbot.IntentTrend},
		{"empty", "", chatbot.IntentDefault},
		{"no keyword", "tell me a joke", chatbot.IntentDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(chatbot.Classify(tt.message), qt.Equals, tt.want)
		})
	}
}

func TestClassifyGreetingHasPriority(t *testing.T) {
	others := []string{
		"air quality", "aqi", "river", "turbidity", "where", "nearest",
		"statistics", "how many", "recommend", "should i", "trend", "history",
	}
	for _, kw := range others {
		t.Run(kw, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(chatbot.Classify("hello, "+kw), qt.Equals, chatbot.IntentGreeting)
		})
	}
}

func TestClassifyAirBeatsLaterTopics(t *testing.T) {
	c := qt.New(t)
	c.Assert(chatbot.Classify("average aqi near the river station"), qt.Equals, chatbot.IntentAirQuality)
}

func TestIntentString(t *testing.T) {
	c := qt.New(t)
	c.Assert(chatbot.IntentWaterQuality.String(), qt.Equals, "water_quality")
	c.Assert(chatbot.Intent(99).String(), qt.Equals, "unknown")
}
