package errreport

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	errs []error
	tags []map[string]string
}

func (r *recordingReporter) Report(ctx context.Context, err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	m := Multi{a, nil, b, NewLogReporter(), NewNopReporter()}

	m.Report(context.Background(), errors.New("boom"), map[string]string{"handler": "course"})
	m.Report(context.Background(), nil, nil)

	require.Len(t, a.errs, 1)
	require.Len(t, b.errs, 1)
	assert.EqualError(t, a.errs[0], "boom")
	assert.Equal(t, "course", b.tags[0]["handler"])
}

func TestRedisReporterKeepsNewestReports(t *testing.T) {
	client := cache.NewTestClient(t, 13)
	r := NewRedisReporter(client)
	r.max = 3

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		r.Report(ctx, fmt.Errorf("failure %d", i), map[string]string{"n": fmt.Sprint(i)})
	}

	reports, err := r.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "failure 4", reports[0].Message)
	assert.Equal(t, "failure 2", reports[2].Message)
	assert.NotEmpty(t, reports[0].ID)

	reports, err = r.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}
