package chatbot

var greetings = []string{
	"Hello! I'm your EnviroWatch AI assistant for Malaysia. I can help you understand environmental monitoring data, air quality, water quality across Malaysia, and provide recommendations. What would you like to know?",
	"Hi there! I'm here to help you with environmental data insights from monitoring stations across Malaysia. You can ask me about air quality in Kuala Lumpur, water quality in our rivers, or trends. How can I assist you today?",
	"Welcome to EnviroWatch Malaysia! I can provide information about environmental conditions across Malaysian cities including Kuala Lumpur, Petaling Jaya, and Shah Alam. Ask me anything about air quality, water quality, or our monitoring stations.",
}

// Greetings returns a copy of the greeting replies.
func Greetings() []string { return append([]string(nil), greetings...) }

const (
	noAirStations   = "I don't have any active air quality monitoring stations at the moment."
	airUnavailable  = "Air quality monitoring data is currently unavailable. Please check back later."
	notAvailable    = "N/A"
	unitMicrograms  = " µg/m³"
	stationsFooter  = "Our monitoring stations in Kuala Lumpur, Petaling Jaya, and Shah Alam are actively tracking air quality. Would you like detailed information about specific monitoring stations?"
	waterFooter     = "Would you like to know about specific monitoring locations?"
	locationsFooter = "These stations are strategically located across the region to provide comprehensive environmental coverage. " +
		"You can view their exact locations on our interactive map page.\n\n" +
		"Would you like to know more about a specific type of monitoring station?"
	statisticsFooter = "These statistics are updated in real-time as new data comes in from our monitoring network."
)

// failures are the replies used when an intent's data could not be loaded.
var failures = map[Intent]string{
	IntentAirQuality:   "I encountered an error retrieving air quality data. Please try again.",
	IntentWaterQuality: "I encountered an error retrieving water quality data. Please try again.",
	IntentLocation:     "I encountered an error retrieving station information. Please try again.",
	IntentStatistics:   "I encountered an error retrieving statistics. Please try again.",
}

const recommendationReply = "Based on current environmental conditions, here are my recommendations:\n\n" +
	"**For Air Quality:**\n" +
	"• Check the AQI before planning outdoor activities\n" +
	"• If AQI is above 100, limit prolonged outdoor exertion\n" +
	"• Consider wearing a mask in areas with high PM2.5 levels\n\n" +
	"**For Water Safety:**\n" +
	"• Avoid swimming in areas with poor water quality ratings\n" +
	"• Check recent water quality reports before water activities\n" +
	"• Report any unusual odors or colors in water bodies\n\n" +
	"**General Tips:**\n" +
	"• Stay informed with our real-time monitoring dashboard\n" +
	"• Subscribe to alerts for your area\n" +
	"• Report environmental concerns to local authorities\n\n" +
	"Is there a specific recommendation you'd like more details about?"

const trendReply = "To analyze environmental trends, I can look at historical data over different time periods:\n\n" +
	"**Available Trend Analysis:**\n" +
	"• Daily trends (24-hour patterns)\n" +
	"• Weekly trends (7-day averages)\n" +
	"• Monthly trends (30-day comparisons)\n\n" +
	"**What we're monitoring:**\n" +
	"• Air quality is generally stable with seasonal variations\n" +
	"• Water quality shows gradual improvement due to rehabilitation efforts\n" +
	"• PM2.5 levels tend to increase during dry season\n\n" +
	"You can view detailed trend charts on our dashboard. " +
	"Which specific parameter would you like to see trends for?"

const defaultReply = "I understand you're asking about environmental monitoring. I can help you with:\n\n" +
	"• **Air Quality** - Current AQI, PM2.5, PM10 levels and forecasts\n" +
	"• **Water Quality** - pH, dissolved oxygen, and turbidity in rivers and marine areas\n" +
	"• **Monitoring Stations** - Locations and status of our monitoring network\n" +
	"• **Statistics** - Historical data and trends\n" +
	"• **Recommendations** - Health advice based on current conditions\n\n" +
	"Please rephrase your question or ask about one of these topics, and I'll provide specific information!"
