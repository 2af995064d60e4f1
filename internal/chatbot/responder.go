package chatbot

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/model"
)

// PointLister lists monitoring points.
type PointLister interface {
	List(ctx context.Context, f model.PointFilter) ([]model.MonitoringPoint, error)
}

// ReadingSource provides the current readings of the network.
type ReadingSource interface {
	LatestForAllPoints(ctx context.Context) ([]model.LatestReading, error)
	DashboardStats(ctx context.Context) (model.DashboardStats, error)
}

// Responder renders the reply for a classified message.  It holds no
// per-conversation state and is safe for concurrent use.
type Responder struct {
	points   PointLister
	readings ReadingSource
	pick     func(n int) int
	log      *zap.Logger
}

// Option customises a Responder.
type Option func(*Responder)

// WithPicker replaces the random source used to choose a greeting.  pick
// must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(r *Responder) { r.pick = pick }
}

// WithLogger sets the logger used to report failed data lookups.
func WithLogger(log *zap.Logger) Option {
	return func(r *Responder) { r.log = log }
}

func NewResponder(points PointLister, readings ReadingSource, opts ...Option) *Responder {
	r := &Responder{
		points:   points,
		readings: readings,
		pick:     rand.IntN,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond returns the reply to message.  It never fails: when the data
// behind an intent cannot be loaded the reply is an apology.  history is
// accepted so callers can pass the conversation, but replies do not depend
// on it.
func (r *Responder) Respond(ctx context.Context, message string, history []model.ChatMessage) string {
	intent := Classify(message)

	var (
		reply string
		err   error
	)
	switch intent {
	case IntentGreeting:
		return greetings[r.pick(len(greetings))]
	case IntentAirQuality:
		reply, err = r.airQuality(ctx)
	case IntentWaterQuality:
		reply, err = r.waterQuality(ctx, strings.ToLower(message))
	case IntentLocation:
		reply, err = r.locations(ctx)
	case IntentStatistics:
		reply, err = r.statistics(ctx)
	case IntentRecommendation:
		return recommendationReply
	case IntentTrend:
		return trendReply
	default:
		return defaultReply
	}
	if err != nil {
		r.log.Warn("chatbot lookup failed",
			zap.Stringer("intent", intent),
			zap.Int("history", len(history)),
			zap.Error(err))
		return failures[intent]
	}
	return reply
}

func (r *Responder) airQuality(ctx context.Context) (string, error) {
	points, err := r.points.List(ctx, model.PointFilter{Type: model.PointAir, Status: model.StatusActive})
	if err != nil {
		return "", fmt.Errorf("list air points: %w", err)
	}
	if len(points) == 0 {
		return noAirStations, nil
	}

	latest, err := r.readings.LatestForAllPoints(ctx)
	if err != nil {
		return "", fmt.Errorf("latest readings: %w", err)
	}
	var aqis, pm25s []*float64
	var first *model.LatestReading
	for i := range latest {
		rd := &latest[i]
		if rd.PointType != model.PointAir || rd.AQI == nil {
			continue
		}
		if first == nil {
			first = rd
		}
		aqi := float64(*rd.AQI)
		aqis = append(aqis, &aqi)
		pm25s = append(pm25s, rd.PM25)
	}
	if first == nil {
		return airUnavailable, nil
	}

	avgAQI, _ := mean(aqis)
	roundedAQI := int(math.Round(avgAQI))
	band := ClassifyAQI(roundedAQI)

	pm25 := notAvailable
	if v, ok := mean(pm25s); ok {
		pm25 = fmt.Sprintf("%.1f", roundTo(v, 1)) + unitMicrograms
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on current monitoring data from %d active air quality stations across Malaysia:\n\n", len(aqis))
	fmt.Fprintf(&b, "**Current Air Quality: %s**\n", band)
	fmt.Fprintf(&b, "• Average AQI: %d\n", roundedAQI)
	fmt.Fprintf(&b, "• Average PM2.5: %s\n", pm25)
	fmt.Fprintf(&b, "• Temperature: %s\n\n", celsius(first.Temperature))
	fmt.Fprintf(&b, "**Health Advice:** %s\n\n", band.HealthAdvice())
	b.WriteString(stationsFooter)
	return b.String(), nil
}

// waterType infers which water body a lowercased message asks about.
func waterType(msg string) model.PointType {
	if containsAny(msg, []string{"marine", "bay", "lake"}) {
		return model.PointMarine
	}
	return model.PointRiver
}

func (r *Responder) waterQuality(ctx context.Context, msg string) (string, error) {
	typ := waterType(msg)
	points, err := r.points.List(ctx, model.PointFilter{Type: typ, Status: model.StatusActive})
	if err != nil {
		return "", fmt.Errorf("list %s points: %w", typ, err)
	}
	if len(points) == 0 {
		return fmt.Sprintf("I don't have any active %s water quality monitoring stations at the moment.", typ), nil
	}

	latest, err := r.readings.LatestForAllPoints(ctx)
	if err != nil {
		return "", fmt.Errorf("latest readings: %w", err)
	}
	var phs, oxygens, turbidities []*float64
	var first *model.LatestReading
	for i := range latest {
		rd := &latest[i]
		if rd.PointType != typ || rd.PH == nil {
			continue
		}
		if first == nil {
			first = rd
		}
		phs = append(phs, rd.PH)
		oxygens = append(oxygens, rd.DissolvedOxygen)
		turbidities = append(turbidities, rd.Turbidity)
	}
	if first == nil {
		name := string(typ)
		return strings.ToUpper(name[:1]) + name[1:] + " water quality data is currently unavailable.", nil
	}

	// assessments use the displayed (rounded) values
	phMean, _ := mean(phs)
	ph := roundTo(phMean, 2)
	oxygen, oxygenText := math.NaN(), notAvailable
	if v, ok := mean(oxygens); ok {
		oxygen = roundTo(v, 2)
		oxygenText = fmt.Sprintf("%.2f mg/L", oxygen)
	}
	turbidity := notAvailable
	if v, ok := mean(turbidities); ok {
		turbidity = fmt.Sprintf("%.1f NTU", roundTo(v, 1))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on current monitoring data from %d active %s monitoring stations:\n\n", len(phs), typ)
	fmt.Fprintf(&b, "**Water Quality: %s**\n", AssessWater(ph, oxygen).Summary())
	fmt.Fprintf(&b, "• Average pH: %.2f (optimal: 6.5-8.5)\n", ph)
	fmt.Fprintf(&b, "• Average Dissolved Oxygen: %s (healthy: >5 mg/L)\n", oxygenText)
	fmt.Fprintf(&b, "• Average Turbidity: %s\n", turbidity)
	fmt.Fprintf(&b, "• Water Temperature: %s\n\n", celsius(first.Temperature))
	fmt.Fprintf(&b, "**Assessment:** %s\n\n", WaterAdvice(ph, oxygen))
	b.WriteString(waterFooter)
	return b.String(), nil
}

func (r *Responder) locations(ctx context.Context) (string, error) {
	points, err := r.points.List(ctx, model.PointFilter{Status: model.StatusActive})
	if err != nil {
		return "", fmt.Errorf("list active points: %w", err)
	}
	counts := map[model.PointType]int{}
	for _, p := range points {
		counts[p.Type]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "We currently have %d active monitoring stations:\n\n", len(points))
	fmt.Fprintf(&b, "• **Air Quality Stations:** %d\n", counts[model.PointAir])
	fmt.Fprintf(&b, "• **River Monitoring Stations:** %d\n", counts[model.PointRiver])
	fmt.Fprintf(&b, "• **Marine/Lake Monitoring Stations:** %d\n\n", counts[model.PointMarine])
	b.WriteString(locationsFooter)
	return b.String(), nil
}

func (r *Responder) statistics(ctx context.Context) (string, error) {
	s, err := r.readings.DashboardStats(ctx)
	if err != nil {
		return "", fmt.Errorf("dashboard stats: %w", err)
	}
	aqi := notAvailable
	if s.AvgAQI != nil {
		aqi = fmt.Sprintf("%d", int(math.Round(*s.AvgAQI)))
	}
	pm25 := notAvailable
	if s.AvgPM25 != nil {
		pm25 = fmt.Sprintf("%.1f", roundTo(*s.AvgPM25, 1)) + unitMicrograms
	}

	var b strings.Builder
	b.WriteString("Here are our current environmental monitoring statistics:\n\n")
	fmt.Fprintf(&b, "• **Active Monitoring Stations:** %d\n", s.ActiveStations)
	fmt.Fprintf(&b, "• **Records Collected (24h):** %d\n", s.TotalRecords)
	fmt.Fprintf(&b, "• **Average AQI:** %s\n", aqi)
	fmt.Fprintf(&b, "• **Average PM2.5:** %s\n", pm25)
	fmt.Fprintf(&b, "• **Good Air Quality Readings:** %d\n", s.GoodAirCount)
	fmt.Fprintf(&b, "• **Unhealthy Air Quality Readings:** %d\n\n", s.UnhealthyAirCount)
	b.WriteString(statisticsFooter)
	return b.String(), nil
}

func celsius(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.1f°C", roundTo(*v, 1))
}
