package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler writes an export snapshot into a directory on a cron schedule.
// Specs take a leading seconds field, e.g. "0 0 0 * * *" for midnight.
type Scheduler struct {
	svc  *Service
	dir  string
	cron *cron.Cron
	log  zerolog.Logger
}

func NewScheduler(svc *Service, dir, spec string, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		svc:  svc,
		dir:  dir,
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "export-scheduler").Logger(),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid export schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info().Str("dir", s.dir).Msg("export scheduler started")
	s.cron.Start()
}

// Stop prevents further runs and waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx := s.log.WithContext(context.Background())
	path, err := s.Snapshot(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("export snapshot failed")
		return
	}
	s.log.Info().Str("path", path).Msg("export snapshot written")
}

// Snapshot writes one export into the directory and returns its path. The
// file appears atomically; a same-day snapshot is overwritten.
func (s *Scheduler) Snapshot(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".export-*.json")
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	doc, err := s.svc.WriteExport(ctx, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close snapshot: %w", cerr)
	}
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, FileName(doc.ExportDate))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move snapshot: %w", err)
	}
	return path, nil
}
