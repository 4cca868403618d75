package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sewa-attendance/internal/models"
)

const (
	SummaryNoRecords   = "No records found for this date to analyze."
	SummaryUnavailable = "AI summary is unavailable: no API key configured."
	SummaryFailed      = "An error occurred while generating the AI summary."
	SummaryEmpty       = "Could not generate summary."
)

// TextGenerator produces text for a prompt using a remote model
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces the daily report text for a date
type Summarizer interface {
	Generate(ctx context.Context, date string, records []models.AttendanceRecord) string
}

var _ Summarizer = (*SummaryGenerator)(nil)

// SummaryGenerator turns one day's records into a chat-ready report.
// It never fails: every problem is reported as one of the Summary* strings.
type SummaryGenerator struct {
	generator TextGenerator
	logger    *zap.Logger
}

// NewSummaryGenerator creates a generator; a nil TextGenerator means no credential
func NewSummaryGenerator(generator TextGenerator, logger *zap.Logger) *SummaryGenerator {
	return &SummaryGenerator{generator: generator, logger: logger}
}

// Generate summarizes the records of date. There is no retry.
func (g *SummaryGenerator) Generate(ctx context.Context, date string, records []models.AttendanceRecord) string {
	if len(records) == 0 {
		return SummaryNoRecords
	}
	if g.generator == nil {
		return SummaryUnavailable
	}

	text, err := g.generator.GenerateText(ctx, summaryPrompt(date, records))
	if err != nil {
		g.logger.Error("summary generation failed", zap.String("date", date), zap.Error(err))
		return SummaryFailed
	}
	if strings.TrimSpace(text) == "" {
		return SummaryEmpty
	}
	return text
}

func summaryPrompt(date string, records []models.AttendanceRecord) string {
	var logs strings.Builder
	for _, r := range records {
		out := "Present"
		if r.OutTime != nil {
			out = *r.OutTime
		}
		fmt.Fprintf(&logs, "- %s at %s: %s to %s\n", r.SewadarName, r.CounterName, r.InTime, out)
	}

	return fmt.Sprintf(`You are the Quality and Attendance Manager for Jalpan Services.
Analyze the following attendance logs for %s.

Logs:
%s
Please provide a concise summary that includes:
1. Total sewadars present.
2. Breakdown of coverage by counter (which counters were most staffed).
3. A polite closing remark for the daily report.

Keep the tone professional and service-oriented (Sewa bhav).
Format the output as plain text suitable for a chat message.
`, date, logs.String())
}
