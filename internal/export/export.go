package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"userwatch/internal/model"
	"userwatch/internal/query"
)

// Report is the serialized dossier for one user: profile, username ledger
// and message log as of GeneratedAt.
type Report struct {
	ReportID        string                  `json:"report_id"`
	GeneratedAt     time.Time               `json:"generated_at"`
	User            *model.User             `json:"user"`
	UsernameHistory []model.UsernameHistory `json:"username_history"`
	Messages        []model.Message         `json:"messages"`
}

// Exporter writes JSON dossiers into the exports directory.
type Exporter struct {
	queries *query.Service
	dir     string
}

func NewExporter(queries *query.Service, dir string) *Exporter {
	return &Exporter{queries: queries, dir: dir}
}

// ExportUser writes the dossier for one user and returns the file path.
func (e *Exporter) ExportUser(ctx context.Context, userID int64) (string, error) {
	report, err := e.buildReport(ctx, userID)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("user_%d_%s.json", userID, report.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(e.dir, name)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// ExportAll writes a dossier for every observed user, returning how many
// were written. Used by the scheduled snapshot.
func (e *Exporter) ExportAll(ctx context.Context) (int, error) {
	users, err := e.queries.AllUsers(ctx)
	if err != nil {
		return 0, err
	}
	written := 0
	for _, u := range users {
		if _, err := e.ExportUser(ctx, u.UserID); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (e *Exporter) buildReport(ctx context.Context, userID int64) (*Report, error) {
	user, err := e.queries.UserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d has never been observed", userID)
	}
	history, err := e.queries.UserHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	messages, err := e.queries.UserMessageHistory(userID).Collect(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{
		ReportID:        uuid.NewString(),
		GeneratedAt:     time.Now(),
		User:            user,
		UsernameHistory: history,
		Messages:        messages,
	}, nil
}
