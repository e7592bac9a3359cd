package drive

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/reorder/internal/ingest"
	"github.com/andresuchdata/reorder/internal/repository"
)

// DemandSync downloads demand reports from Drive and loads them into the
// item repository so schedule generation always works off the latest
// sales velocities.
type DemandSync struct {
	svc      *Service
	repo     repository.ScheduleRepository
	folderID string
	workDir  string
}

func NewDemandSync(svc *Service, repo repository.ScheduleRepository, folderID, workDir string) *DemandSync {
	return &DemandSync{
		svc:      svc,
		repo:     repo,
		folderID: folderID,
		workDir:  workDir,
	}
}

type SyncResult struct {
	Files []string `json:"files"`
	Items int      `json:"items"`
}

// Run downloads every report in the configured folder and upserts the
// items it finds. A report that fails to parse is skipped, not fatal.
func (d *DemandSync) Run(ctx context.Context) (*SyncResult, error) {
	paths, err := d.svc.DownloadFolderCSV(d.folderID, d.workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to download demand reports: %w", err)
	}

	result := &SyncResult{}
	for _, path := range paths {
		items, err := d.ingestFile(ctx, path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("failed to ingest demand report")
			continue
		}
		result.Files = append(result.Files, path)
		result.Items += items
	}

	log.Info().Int("files", len(result.Files)).Int("items", result.Items).Msg("demand sync completed")
	return result, nil
}

func (d *DemandSync) ingestFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("unable to open report: %w", err)
	}
	defer f.Close()

	items, err := ingest.ReadDemandReport(f)
	if err != nil {
		return 0, err
	}

	if err := d.repo.UpsertItems(ctx, items); err != nil {
		return 0, fmt.Errorf("unable to store items: %w", err)
	}

	return len(items), nil
}
