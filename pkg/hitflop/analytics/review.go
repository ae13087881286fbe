package analytics

import (
	"github.com/cognicore/hitflop/pkg/hitflop/frame"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
)

// SentimentColumns are the accepted sentiment score columns, first present wins.
var SentimentColumns = []string{"avg_sentiment", "sentiment", "sentiment_score"}

// ReviewKPIs is the review page's KPI row.
type ReviewKPIs struct {
	TotalReviews KPI `json:"total_reviews"`
	AvgSentiment KPI `json:"avg_sentiment"`
	// HitGap is the mean sentiment of Hit rows minus that of Non-Hit rows.
	HitGap KPI `json:"hit_gap"`
}

// Reviews computes the review KPIs of a normalised review summary.
func Reviews(f *frame.Frame) ReviewKPIs {
	var k ReviewKPIs
	if col := f.First(ReviewColumns...); col != "" {
		var sum float64
		for i := 0; i < f.Len(); i++ {
			if v, ok := f.Float(i, col); ok {
				sum += v
				k.TotalReviews.Available = true
			}
		}
		k.TotalReviews.Value = sum
	}

	col := f.First(SentimentColumns...)
	if col == "" {
		return k
	}
	var all, hit, nonHit mean
	for i := 0; i < f.Len(); i++ {
		v, ok := f.Float(i, col)
		if !ok {
			continue
		}
		all.add(v)
		switch f.Value(i, normalize.ColumnHitLabel) {
		case normalize.Hit:
			hit.add(v)
		case normalize.NonHit:
			nonHit.add(v)
		}
	}
	k.AvgSentiment = all.kpi()
	if hit.n > 0 && nonHit.n > 0 {
		k.HitGap = KPI{Value: hit.value() - nonHit.value(), Available: true}
	}
	return k
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 { return m.sum / float64(m.n) }

func (m mean) kpi() KPI {
	if m.n == 0 {
		return KPI{}
	}
	return KPI{Value: m.value(), Available: true}
}
