package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-companion-backend/internal/domain"
	"github.com/tbourn/go-companion-backend/internal/llm"
	"github.com/tbourn/go-companion-backend/internal/repo"
)

// DateLayout is the calendar-date format accepted by the mood endpoints.
const DateLayout = "2006-01-02"

// NoMoodEntriesInsight is returned instead of a model call when the range is empty.
const NoMoodEntriesInsight = "No mood entries found for this period. Start tracking your mood to see insights!"

// MoodModel writes the narrative part of a mood analysis.
type MoodModel interface {
	MoodAnalysis(ctx context.Context, stats llm.MoodStats, entries []domain.MoodEntry) (string, error)
}

// MoodAnalysis is the result of analyzing a date range.
type MoodAnalysis struct {
	Start        string
	End          string
	AverageScore float64 // rounded to two decimals
	TotalEntries int
	Trend        domain.Trend
	Insight      string
}

// MoodService summarizes mood entries and asks the model for an insight.
type MoodService struct {
	Store repo.Store
	Model MoodModel
}

// Analyze validates the YYYY-MM-DD bounds, loads the entries in the
// inclusive range, and builds the summary. An empty range returns a fixed
// insight without calling the model.
func (s *MoodService) Analyze(ctx context.Context, userID, startDate, endDate string) (*MoodAnalysis, error) {
	tr := otel.Tracer("services/MoodService")
	ctx, span := tr.Start(ctx, "Analyze",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("period.start", startDate),
			attribute.String("period.end", endDate),
		),
	)
	defer span.End()

	start, end, err := ParseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	entries, err := s.Store.ListMoodsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	out := &MoodAnalysis{Start: startDate, End: endDate, Trend: domain.TrendStable}
	if len(entries) == 0 {
		out.Insight = NoMoodEntriesInsight
		moodTrends.WithLabelValues(string(out.Trend)).Inc()
		return out, nil
	}

	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = e.Score
	}
	avg := mean(scores)
	out.TotalEntries = len(entries)
	out.Trend = ClassifyTrend(scores)
	out.AverageScore = round2(avg)
	moodTrends.WithLabelValues(string(out.Trend)).Inc()
	span.SetAttributes(attribute.Int("mood.entries", out.TotalEntries), attribute.String("mood.trend", string(out.Trend)))

	insight, err := s.Model.MoodAnalysis(ctx, llm.MoodStats{
		AverageScore: avg,
		TotalEntries: out.TotalEntries,
		Trend:        out.Trend,
	}, entries)
	if err != nil {
		return nil, err
	}
	out.Insight = insight
	return out, nil
}

// ParseDateRange parses both bounds as calendar dates in UTC and rejects
// start after end. Equal dates are a valid one-day range.
func ParseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, ErrDateOrder
	}
	return start, end, nil
}
