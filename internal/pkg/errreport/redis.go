package errreport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultReportsKey = "error_reports"
	DefaultMaxReports = 200
)

// RedisReporter keeps the most recent reports in a capped Redis list.
type RedisReporter struct {
	client redis.Cmdable
	key    string
	max    int64
}

// NewRedisReporter creates a ring-buffer reporter on the default key.
func NewRedisReporter(client redis.Cmdable) *RedisReporter {
	return &RedisReporter{client: client, key: DefaultReportsKey, max: DefaultMaxReports}
}

func (r *RedisReporter) Report(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}

	data, merr := json.Marshal(Report{
		ID:         uuid.New().String(),
		Message:    err.Error(),
		Tags:       tags,
		ReportedAt: time.Now().UTC(),
	})
	if merr != nil {
		log.Warnf("[ErrorReport] Failed to encode report: %v", merr)
		return
	}

	// Reports must survive a cancelled request context.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.LPush(wctx, r.key, data)
	pipe.LTrim(wctx, r.key, 0, r.max-1)
	if _, perr := pipe.Exec(wctx); perr != nil {
		log.Warnf("[ErrorReport] Failed to store report: %v", perr)
	}
}

// Recent returns up to limit reports, newest first.
func (r *RedisReporter) Recent(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 || int64(limit) > r.max {
		limit = int(r.max)
	}

	items, err := r.client.LRange(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(items))
	for _, item := range items {
		var rep Report
		if err := json.Unmarshal([]byte(item), &rep); err != nil {
			continue
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
