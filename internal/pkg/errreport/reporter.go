// Package errreport records failures for operator visibility. Reporting never
// changes the control flow of the caller.
package errreport

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Reporter records an error together with descriptive tags.
type Reporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
}

// Report is one recorded error.
type Report struct {
	ID         string            `json:"id"`
	Message    string            `json:"message"`
	Tags       map[string]string `json:"tags,omitempty"`
	ReportedAt time.Time         `json:"reported_at"`
}

type NopReporter struct{}

func NewNopReporter() *NopReporter {
	return &NopReporter{}
}

func (NopReporter) Report(ctx context.Context, err error, tags map[string]string) {}

// LogReporter writes reports to the application log.
type LogReporter struct{}

func NewLogReporter() *LogReporter {
	return &LogReporter{}
}

func (LogReporter) Report(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	log.Errorf("[ErrorReport] %v %v", err, tags)
}

// Multi fans a report out to every reporter.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	for _, r := range m {
		if r != nil {
			r.Report(ctx, err, tags)
		}
	}
}
