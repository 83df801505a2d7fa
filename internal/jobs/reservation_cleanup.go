// File: internal/jobs/reservation_cleanup.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"marketplace_backend/internal/config"
	"marketplace_backend/internal/reservation"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReservationCleanupJob deletes reservation rows that no reader can ever see
// again: cancelled rows and rows expired longer ago than the retention
// window. Validity of listings never depends on this job running; it only
// keeps the ledger table from growing without bound.
type ReservationCleanupJob struct {
	reservationRepo reservation.Repository
	logger          *zap.Logger
	cfg             *config.Config
	cronScheduler   *cron.Cron
}

// NewReservationCleanupJob creates a new ReservationCleanupJob.
func NewReservationCleanupJob(
	reservationRepo reservation.Repository,
	logger *zap.Logger,
	cfg *config.Config,
) *ReservationCleanupJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &ReservationCleanupJob{
		reservationRepo: reservationRepo,
		logger:          logger.Named("ReservationCleanupJob"),
		cfg:             cfg,
		cronScheduler:   scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *ReservationCleanupJob) SetupAndStart() error {
	jobSpec := j.cfg.ReservationCleanupSchedule
	if jobSpec == "" {
		j.logger.Warn("Reservation cleanup schedule not defined (RESERVATION_CLEANUP_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule reservation cleanup job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Reservation cleanup job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *ReservationCleanupJob) runJob() {
	j.logger.Info("Starting reservation cleanup run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -j.cfg.ReservationRetentionDays)
	purged, err := j.reservationRepo.PurgeStale(ctx, cutoff)
	if err != nil {
		j.logger.Error("Reservation cleanup run failed", zap.Error(err))
	} else {
		j.logger.Info("Reservation cleanup run completed", zap.Int64("rows_purged", purged))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *ReservationCleanupJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping reservation cleanup scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Reservation cleanup scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Reservation cleanup scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
