package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"time"

	"stocktrack/internal/model"
	"stocktrack/internal/repository"
)

type ActivityLogResponse struct {
	ID       uint   `json:"id"`
	UserID   *uint  `json:"user_id"`
	Username string `json:"username"`
	Action   string `json:"action"`
	Details  string `json:"details"`
	LoggedAt string `json:"logged_at"`
}

// ActivityService is the audit sink plus the admin-facing views over it.
// Recording is best effort: a failed insert never fails the mutation that
// triggered it.
type ActivityService interface {
	Record(ctx context.Context, actor *model.User, action, details string)
	List(ctx context.Context, page, limit int) ([]ActivityLogResponse, int64, error)
	WriteCSV(ctx context.Context, w io.Writer) error
	ExportFilename(now time.Time) string
}

type activityService struct {
	repo repository.ActivityRepository
}

// NewActivityService creates a new ActivityService instance
func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

// Record appends one audit row capturing the actor's id, a point-in-time copy
// of their username, the action label and optional details. A nil actor skips
// the row with a warning. Insert failures are logged and swallowed so the
// audit trail can never roll back or fail the triggering operation.
func (s *activityService) Record(ctx context.Context, actor *model.User, action, details string) {
	if actor == nil {
		log.Printf("WARNING: skipping activity record for action %s: no acting user", action)
		return
	}

	entry := &model.ActivityLog{
		UserID:   &actor.ID,
		Username: actor.Username,
		Action:   action,
	}
	if details != "" {
		entry.Details = &details
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		log.Printf("ERROR: failed to record activity %s for user %s: %v", action, actor.Username, err)
	}
}

func (s *activityService) List(ctx context.Context, page, limit int) ([]ActivityLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	entries, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ActivityLogResponse, 0, len(entries))
	for _, e := range entries {
		details := ""
		if e.Details != nil {
			details = *e.Details
		}
		res = append(res, ActivityLogResponse{
			ID:       e.ID,
			UserID:   e.UserID,
			Username: e.Username,
			Action:   e.Action,
			Details:  details,
			LoggedAt: e.LoggedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}

// WriteCSV streams the full trail as RFC 4180 CSV. encoding/csv handles the
// quoting rules (fields containing comma, quote or newline are wrapped,
// embedded quotes doubled).
func (s *activityService) WriteCSV(ctx context.Context, w io.Writer) error {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "user_id", "username", "action", "details", "logged_at"}); err != nil {
		return err
	}

	for _, e := range entries {
		userID := ""
		if e.UserID != nil {
			userID = fmt.Sprintf("%d", *e.UserID)
		}
		details := ""
		if e.Details != nil {
			details = *e.Details
		}
		record := []string{
			fmt.Sprintf("%d", e.ID),
			userID,
			e.Username,
			e.Action,
			details,
			e.LoggedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename suffixes the download name with the current local date.
func (s *activityService) ExportFilename(now time.Time) string {
	return "activity-log-" + now.Format("2006-01-02") + ".csv"
}
