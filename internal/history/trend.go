package history

import "time"

// Trend directions
const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
	TrendDecreasing = "decreasing"
)

// Trend is the linear trend of one metric across snapshots.
type Trend struct {
	Key           string  `json:"key"`
	Direction     string  `json:"direction"`      // "increasing" | "stable" | "decreasing"
	Velocity      float64 `json:"velocity"`       // change per day
	Projection30d float64 `json:"projection_30d"` // predicted value in 30 days
	DataPoints    int     `json:"data_points"`    // snapshots used
}

// CalculateTrend fits a least-squares line through the metric key over the
// snapshots (oldest first). Snapshots lacking the key or a parseable date are
// skipped.
func CalculateTrend(snapshots []Snapshot, key string) Trend {
	type point struct {
		at    time.Time
		value float64
	}
	var points []point
	for _, s := range snapshots {
		v, ok := s.Metric(key)
		if !ok {
			continue
		}
		at, err := time.Parse(time.RFC3339, s.Date)
		if err != nil {
			continue
		}
		points = append(points, point{at: at, value: float64(v)})
	}

	if len(points) < 2 {
		t := Trend{Key: key, Direction: TrendStable, DataPoints: len(points)}
		if len(points) == 1 {
			t.Projection30d = points[0].value
		}
		return t
	}

	// Linear regression: y = mx + b, x in days since the first point
	var sumX, sumY, sumXY, sumX2 float64
	n := float64(len(points))
	base := points[0].at
	for _, p := range points {
		x := p.at.Sub(base).Hours() / 24
		sumX += x
		sumY += p.value
		sumXY += x * p.value
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	var velocity float64
	if denominator != 0 {
		velocity = (n*sumXY - sumX*sumY) / denominator
	}

	direction := TrendStable
	if velocity > 0.01 {
		direction = TrendIncreasing
	} else if velocity < -0.01 {
		direction = TrendDecreasing
	}

	projection := points[len(points)-1].value + velocity*30
	// Counts never go negative
	if projection < 0 {
		projection = 0
	}

	return Trend{
		Key:           key,
		Direction:     direction,
		Velocity:      velocity,
		Projection30d: projection,
		DataPoints:    len(points),
	}
}
