package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"SectorPulse/internal/analyzer"

	"github.com/rs/zerolog/log"
)

// DirLayout names the per-cycle export directory.
const DirLayout = "20060102-150405"

// Writer writes result tables as CSV files under a root directory.
type Writer struct {
	Root string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Root: dir}
}

// Write exports every sheet of res into a directory named after the analysis
// timestamp and returns that directory.
func (w *Writer) Write(res *analyzer.Result) (string, error) {
	dir := filepath.Join(w.Root, res.Snapshot.AnalysisTimestamp.Format(DirLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	for _, t := range Tables(res) {
		if err := WriteCSV(filepath.Join(dir, t.Name+".csv"), t); err != nil {
			return "", fmt.Errorf("export %s: %w", t.Name, err)
		}
	}
	log.Info().Str("dir", dir).Msg("analysis exported")
	return dir, nil
}

// WriteCSV writes one table to path.
func WriteCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return f.Close()
}
