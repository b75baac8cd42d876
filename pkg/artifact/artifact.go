// Package artifact implements C1: the fixed-schema CSV emitted for every
// membership change, consumed downstream by the workflow executor's
// permission-application step.
package artifact

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/permflow/engine/internal/logger"
	"github.com/permflow/engine/pkg/catalogue/models"
)

// csvHeader is the fixed field order (§4.1), written as the first line of
// every artefact.
const csvHeader = "UserName;ADGroup;idTarea;idAccion;MatriculaUsu;idRecurso;idModo"

// Row is one line of the artefact: a single membership change.
type Row struct {
	UserName     string
	ADGroup      string
	TaskID       string // idTarea: owning request id, or REMOVE_<folder>_<user>_<nonce>
	Action       models.Action
	EmployeeID   string // MatriculaUsu
	ResourceID   string // idRecurso: folder id
	Mode         models.PermissionMode
}

// Writer writes CSV artefacts to a configured output directory.
type Writer struct {
	outputDir   string
	domainPrefix string
	s3          Archiver
}

// Archiver copies a finished artefact somewhere durable before local
// cleanup deletes it. Optional: a nil Archiver skips archival entirely
// (§4.1 [FULL]).
type Archiver interface {
	Archive(ctx context.Context, localPath string) error
}

// Config configures a Writer.
type Config struct {
	OutputDir    string
	DomainPrefix string // AD_DOMAIN_PREFIX, e.g. "DOM\\"
}

// New constructs a Writer. archiver may be nil.
func New(cfg Config, archiver Archiver) (*Writer, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create csv output directory: %w", err)
	}
	return &Writer{outputDir: cfg.OutputDir, domainPrefix: cfg.DomainPrefix, s3: archiver}, nil
}

// stripDomain returns the bare principal name, stripping a DOMAIN\ prefix
// if present (§4.1: "UserName is the bare principal, domain prefix
// stripped").
func stripDomain(username string) string {
	if idx := strings.IndexByte(username, '\\'); idx >= 0 {
		return username[idx+1:]
	}
	return username
}

func (w *Writer) groupName(name string) string {
	if w.domainPrefix == "" {
		return name
	}
	return w.domainPrefix + name
}

func nonce() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// filename builds <purpose>_<UTC-timestamp>_<8-hex-nonce>.csv per §4.1.
func filename(purpose string) string {
	return fmt.Sprintf("%s_%s_%s.csv", purpose, time.Now().UTC().Format("20060102T150405Z"), nonce())
}

func (w *Writer) writeRows(purpose string, rows []Row) (string, error) {
	path := filepath.Join(w.outputDir, filename(purpose))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artefact file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	cw.Comma = ';'
	cw.UseCRLF = false

	if err := cw.Write(strings.Split(csvHeader, ";")); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			stripDomain(r.UserName),
			w.groupName(r.ADGroup),
			r.TaskID,
			fmt.Sprintf("%d", r.Action.Code()),
			r.EmployeeID,
			r.ResourceID,
			fmt.Sprintf("%d", r.Mode.Code()),
		}
		if err := cw.Write(record); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	return path, nil
}

// WriteSingle writes one row for an approved request's membership change.
func (w *Writer) WriteSingle(r Row) (string, error) {
	return w.writeRows("change", []Row{r})
}

// WriteBulk writes several rows to one artefact.
func (w *Writer) WriteBulk(rows []Row) (string, error) {
	return w.writeRows("bulk", rows)
}

// WriteAdminRemoval writes an admin-initiated removal, synthesising the
// REMOVE_<folderId>_<userId>_<nonce> idTarea used when there is no owning
// PermissionRequest (§4.1).
func (w *Writer) WriteAdminRemoval(userID, employeeID, folderID, groupName string, mode models.PermissionMode) (string, error) {
	taskID := fmt.Sprintf("REMOVE_%s_%s_%s", folderID, userID, nonce())
	row := Row{
		UserName:   userID,
		ADGroup:    groupName,
		TaskID:     taskID,
		Action:     models.ActionRemove,
		EmployeeID: employeeID,
		ResourceID: folderID,
		Mode:       mode,
	}
	return w.writeRows("admin_removal", []Row{row})
}

// CleanupOlderThan removes artefacts older than the retention window,
// archiving each one first if an Archiver is configured. Archival failures
// are logged, not fatal: cleanup still proceeds (§4.1 [FULL]).
func (w *Writer) CleanupOlderThan(ctx context.Context, days int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	entries, err := os.ReadDir(w.outputDir)
	if err != nil {
		return 0, fmt.Errorf("read csv output directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(w.outputDir, e.Name())
		if w.s3 != nil {
			if err := w.s3.Archive(ctx, path); err != nil {
				logger.Error("artefact archival failed, deleting locally anyway", "error", err, "path", path)
			}
		}
		if err := os.Remove(path); err != nil {
			logger.Error("artefact cleanup failed to remove file", "error", err, "path", path)
			continue
		}
		removed++
	}
	return removed, nil
}

// DeleteByPath removes one artefact immediately, used by C6 when a task is
// cancelled (§4.6).
func (w *Writer) DeleteByPath(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
