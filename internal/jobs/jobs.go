package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"go-inventory-ledger/internal/logging"
	"go-inventory-ledger/internal/models"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSchedule reports whether spec is a schedule the Scheduler accepts.
func ValidateSchedule(spec string) error {
	_, err := cronParser.Parse(spec)
	return err
}

// Sweeper is the part of the ledger the low stock job drives.
type Sweeper interface {
	SweepLowStock(ctx context.Context) ([]models.Activity, error)
}

// Scheduler runs periodic maintenance tasks.
type Scheduler struct {
	sched   *cron.Cron
	timeout time.Duration
}

func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		sched:   cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		timeout: 30 * time.Second,
	}
}

// AddLowStockSweep schedules the low stock sweep on spec (e.g. "@every 1m").
func (s *Scheduler) AddLowStockSweep(spec string, sweeper Sweeper) error {
	if _, err := s.sched.AddFunc(spec, LowStockJob(sweeper, s.timeout)); err != nil {
		return fmt.Errorf("schedule low stock sweep %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() { s.sched.Start() }

// Stop stops the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context { return s.sched.Stop() }

// LowStockJob returns the cron body: one sweep bounded by timeout. A panic is
// logged and swallowed so the scheduler keeps running.
func LowStockJob(sweeper Sweeper, timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ctx = logging.WithFields(ctx, logrus.Fields{"job": "low_stock_sweep"})

		defer func() {
			if r := recover(); r != nil {
				logging.WithContext(ctx).Errorf("low stock sweep panic: %v", r)
			}
		}()

		raised, err := sweeper.SweepLowStock(ctx)
		if err != nil {
			logging.WithContext(ctx).WithError(err).Error("low stock sweep failed")
			return
		}
		if len(raised) > 0 {
			logging.WithContext(ctx).WithField("raised", len(raised)).Info("low stock warnings raised")
		}
	}
}
