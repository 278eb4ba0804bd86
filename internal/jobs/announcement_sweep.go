package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/siakad/internal/models"
)

// PurgeFunc deletes announcements that expired before today.
type PurgeFunc func(ctx context.Context, today models.Date) (int64, error)

// AnnouncementSweep removes expired pemberitahuan. "Today" is taken in loc so a
// sweep just after midnight in Jakarta does not use the UTC date.
func AnnouncementSweep(purge PurgeFunc, loc *time.Location, log *zap.Logger, now func() time.Time) Job {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) error {
		t := now().In(loc)
		today := models.NewDate(t.Year(), t.Month(), t.Day())
		n, err := purge(ctx, today)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("expired announcements purged", zap.Int64("count", n), zap.String("today", today.String()))
		}
		return nil
	}
}
