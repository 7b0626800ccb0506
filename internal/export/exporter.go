package export

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"github.com/klauspost/compress/zstd"

	trackerrors "modtrack/internal/errors"
	"modtrack/internal/history"
	"modtrack/internal/jsonutil"
	"modtrack/internal/paths"
)

//go:embed templates/dashboard.html.tmpl
var templateFS embed.FS

var dashboard = template.Must(template.ParseFS(templateFS, "templates/dashboard.html.tmpl"))

// Exporter writes bundles to files.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// WriteJSON writes the bundle as pretty-printed JSON with sorted keys.
func (e *Exporter) WriteJSON(bundle Bundle, path string) error {
	data, err := jsonutil.Sorted(bundle, "  ")
	if err != nil {
		return trackerrors.New(trackerrors.SerializationFailed, "cannot encode report", err)
	}
	if err := writeFile(path, append(data, '\n')); err != nil {
		return err
	}
	e.logger.Info("JSON exported", "path", path, "modules", bundle.ModulesCount)
	return nil
}

type dashboardData struct {
	GeneratedAt  string
	RulesVersion string
	Report       string // compact JSON, HTML-escaped for <script>
	History      string
}

// WriteHTML renders the dashboard with the bundle and history inlined as
// compact JSON. A nil history renders as an empty sequence.
func (e *Exporter) WriteHTML(bundle Bundle, h *history.History, path string) error {
	report, err := jsonutil.ForScript(bundle)
	if err != nil {
		return trackerrors.New(trackerrors.SerializationFailed, "cannot encode report", err)
	}
	h = h.Normalized()
	hist, err := jsonutil.ForScript(h)
	if err != nil {
		return trackerrors.New(trackerrors.SerializationFailed, "cannot encode history", err)
	}

	var buf bytes.Buffer
	err = dashboard.Execute(&buf, dashboardData{
		GeneratedAt:  bundle.GeneratedAt,
		RulesVersion: bundle.RulesVersion,
		Report:       string(report),
		History:      string(hist),
	})
	if err != nil {
		return trackerrors.New(trackerrors.SerializationFailed, "cannot render dashboard", err)
	}

	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	e.logger.Info("HTML exported", "path", path, "snapshots", len(h.Snapshots))
	return nil
}

// Archive stores a zstd-compressed compact copy of the bundle as
// <dir>/<runID>.json.zst and returns its path.
func (e *Exporter) Archive(bundle Bundle, dir, runID string) (string, error) {
	data, err := jsonutil.SortedCompact(bundle)
	if err != nil {
		return "", trackerrors.New(trackerrors.SerializationFailed, "cannot encode report", err)
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return "", trackerrors.New(trackerrors.InternalError, "cannot create compressor", err)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return "", trackerrors.New(trackerrors.SerializationFailed, "cannot compress report", err)
	}
	if err := enc.Close(); err != nil {
		return "", trackerrors.New(trackerrors.SerializationFailed, "cannot compress report", err)
	}

	path := filepath.Join(dir, runID+".json.zst")
	if err := writeFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	e.logger.Debug("Archived report",
		"path", path,
		"raw_bytes", len(data),
		"compressed_bytes", buf.Len(),
	)
	return path, nil
}

// ReadArchive decodes a bundle written by Archive.
func ReadArchive(path string) (Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return Bundle{}, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Bundle{}, err
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return Bundle{}, fmt.Errorf("decompress %s: %w", path, err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return b, nil
}

func writeFile(path string, data []byte) error {
	if err := paths.WriteFileAtomic(path, data, 0644); err != nil {
		return trackerrors.New(trackerrors.OutputUnwritable, "cannot write "+path, err)
	}
	return nil
}
