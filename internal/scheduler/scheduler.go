package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/reorder/internal/drive"
	"github.com/andresuchdata/reorder/internal/service"
)

// Scheduler runs the recurring jobs: pulling fresh demand reports from
// Drive and regenerating every schedule afterwards.
type Scheduler struct {
	cron     *cron.Cron
	sync     *drive.DemandSync
	schedSvc *service.ScheduleService
	spec     string
}

// New builds a scheduler with the given cron spec (standard 5-field
// syntax). sync may be nil when Drive is not configured; the job then
// only regenerates schedules from what is already ingested.
func New(spec string, sync *drive.DemandSync, schedSvc *service.ScheduleService) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		sync:     sync,
		schedSvc: schedSvc,
		spec:     spec,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return err
	}

	s.cron.Start()
	log.Info().Str("spec", s.spec).Msg("demand sync scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("demand sync scheduler stopped")
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if s.sync != nil {
		if _, err := s.sync.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled demand sync failed")
			return
		}
	}

	runs, err := s.schedSvc.GenerateAll(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("scheduled schedule refresh failed")
		return
	}

	log.Info().Int("schedules", len(runs)).Msg("scheduled refresh completed")
}
