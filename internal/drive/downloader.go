package drive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	mimeTypeCSV  = "text/csv"
	mimeTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DownloadFolderCSV pulls every CSV and XLSX demand report from the given
// Drive folder into destDir. XLSX files are converted to CSV on the way
// down so downstream ingestion only ever sees CSV. Returns the local
// paths of the downloaded reports.
func (s *Service) DownloadFolderCSV(folderID, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create download directory: %w", err)
	}

	files, err := s.ListFiles(folderID)
	if err != nil {
		return nil, err
	}

	var downloaded []string
	for _, f := range files {
		switch f.MimeType {
		case mimeTypeCSV:
			path := filepath.Join(destDir, f.Name)
			if err := s.downloadTo(f.ID, path); err != nil {
				log.Error().Err(err).Str("file", f.Name).Msg("failed to download demand report")
				continue
			}
			downloaded = append(downloaded, path)
		case mimeTypeXLSX:
			xlsxPath := filepath.Join(destDir, f.Name)
			if err := s.downloadTo(f.ID, xlsxPath); err != nil {
				log.Error().Err(err).Str("file", f.Name).Msg("failed to download demand report")
				continue
			}
			csvPath := strings.TrimSuffix(xlsxPath, filepath.Ext(xlsxPath)) + ".csv"
			if err := convertXLSXToCSV(xlsxPath, csvPath); err != nil {
				log.Error().Err(err).Str("file", f.Name).Msg("failed to convert xlsx report")
				continue
			}
			os.Remove(xlsxPath)
			downloaded = append(downloaded, csvPath)
		default:
			log.Debug().Str("file", f.Name).Str("mime", f.MimeType).Msg("skipping non-report file")
		}
	}

	return downloaded, nil
}

func (s *Service) downloadTo(fileID, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create file %s: %w", path, err)
	}
	defer out.Close()

	return s.DownloadFile(fileID, out)
}
