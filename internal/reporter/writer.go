package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/canaryspectre/internal/models"
	"github.com/ppiankov/canaryspectre/pkg/config"
)

// Encode serializes the report in block style with two-space indentation
func Encode(w io.Writer, report *models.Report, format string) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}

	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write JSON report: %w", err)
		}
		return nil
	case config.FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to marshal report to YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush YAML report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be %q or %q", format, config.FormatYAML, config.FormatJSON)
	}
}

// WriteFile writes the report to path. The file is written in place, so an
// interrupted write leaves a truncated file behind.
func WriteFile(report *models.Report, path, format string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Encode(f, report, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	slog.Debug("report written", slog.String("path", path), slog.String("format", format))
	return nil
}
