package reporter

import (
	"io"
	"os"

	"github.com/ppiankov/canaryspectre/internal/models"
	"github.com/ppiankov/canaryspectre/pkg/config"
)

// StdoutPath is the output path that selects stdout
const StdoutPath = "-"

// Reporter interface for writing reports
type Reporter interface {
	Generate(report *models.Report) error
}

// reporter implements the Reporter interface
type reporter struct {
	config *config.Config
	stdout io.Writer
}

// New creates a new reporter instance. stdout receives the report when the
// output path is StdoutPath; nil means os.Stdout.
func New(cfg *config.Config, stdout io.Writer) Reporter {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &reporter{
		config: cfg,
		stdout: stdout,
	}
}

// Generate writes the report to the configured path in the configured format
func (r *reporter) Generate(report *models.Report) error {
	if r.config.OutputPath == StdoutPath {
		return Encode(r.stdout, report, r.config.Format)
	}
	return WriteFile(report, r.config.OutputPath, r.config.Format)
}
