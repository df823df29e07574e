package batch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/avogel/mailslip/internal/folder"
	"github.com/avogel/mailslip/internal/mailer"
	"github.com/avogel/mailslip/internal/source"
	"github.com/avogel/mailslip/internal/types"
)

// Sender is the transport the runner hands each composed message to.
// *mailer.Mailer satisfies it; tests substitute a capturing fake.
type Sender interface {
	Send(msg mailer.Message) error
}

// Runner walks the source once and sends one message per matched record.
// A run resolves the dated folder exactly once; everything else is
// per-record and a single failure never stops the loop.
type Runner struct {
	SourcePath     string
	ParentDir      string
	EmailDelimiter string

	// TargetEndDate selects a folder by exact end date when UseEndDate is
	// set; otherwise the folder with the latest end date wins.
	TargetEndDate time.Time
	UseEndDate    bool

	Subject string
	Body    string
	DryRun  bool

	Sender Sender
	Log    *slog.Logger

	// Progress, when non-nil, receives completion fractions the way the
	// UI's progress bar expects. Sends never block.
	Progress chan<- float64
}

// Run performs one batch pass. An error return means the run aborted before
// processing (no folder, unreadable source); per-record failures are
// recorded in the summary instead.
func (r *Runner) Run() (*types.RunSummary, error) {
	log := r.logger()

	folders, err := folder.Scan(r.ParentDir)
	if err != nil {
		return nil, err
	}

	var selected types.DatedFolder
	var ok bool
	if r.UseEndDate {
		selected, ok = folder.SelectByEndDate(folders, r.TargetEndDate)
		if !ok {
			return nil, fmt.Errorf("%w: no folder in %s ends on %s",
				folder.ErrNoDatedFolders, r.ParentDir, r.TargetEndDate.Format("02-01-06"))
		}
	} else {
		selected, ok = folder.SelectLatest(folders)
		if !ok {
			return nil, fmt.Errorf("%w in %s", folder.ErrNoDatedFolders, r.ParentDir)
		}
	}
	log.Info("folder resolved", "path", selected.Path, "end_date", selected.EndDate.Format("2006-01-02"))

	records, err := source.Load(r.SourcePath, r.EmailDelimiter)
	if err != nil {
		return nil, err
	}

	summary := &types.RunSummary{
		Folder:     selected.Path,
		SourceFile: r.SourcePath,
	}

	total := len(records)
	for i, rec := range records {
		outcome := r.process(rec, selected.Path, log)
		summary.Outcomes = append(summary.Outcomes, outcome)
		switch outcome.Status {
		case types.StatusSent:
			summary.Sent++
		case types.StatusSkipped:
			summary.Skipped++
		case types.StatusFailed:
			summary.Failed++
		}
		r.report(float64(i+1) / float64(total))
	}

	return summary, nil
}

func (r *Runner) process(rec types.Record, folderPath string, log *slog.Logger) types.SendOutcome {
	outcome := types.SendOutcome{RecordID: rec.ID, Emails: rec.Emails}

	if len(rec.Emails) == 0 {
		outcome.Status = types.StatusSkipped
		outcome.Reason = "no contact emails"
		log.Warn("record skipped", "id", rec.ID, "reason", outcome.Reason)
		return outcome
	}

	path, found := folder.ResolveAttachment(rec.ID, folderPath)
	if !found {
		outcome.Status = types.StatusSkipped
		outcome.Reason = fmt.Sprintf("no PDF named %s.pdf", rec.ID)
		log.Warn("record skipped", "id", rec.ID, "reason", outcome.Reason)
		return outcome
	}

	if r.DryRun {
		outcome.Status = types.StatusSent
		outcome.Reason = "dry run, not sent"
		log.Info("would send", "id", rec.ID, "to", rec.Emails, "attachment", path)
		return outcome
	}

	err := r.Sender.Send(mailer.Message{
		To:             rec.Emails,
		Subject:        r.Subject,
		Body:           r.Body,
		AttachmentPath: path,
	})
	if err != nil {
		outcome.Status = types.StatusFailed
		outcome.Reason = err.Error()
		log.Error("send failed", "id", rec.ID, "to", rec.Emails, "error", err)
		return outcome
	}

	outcome.Status = types.StatusSent
	log.Info("sent", "id", rec.ID, "to", rec.Emails, "attachment", path)
	return outcome
}

func (r *Runner) report(fraction float64) {
	if r.Progress == nil {
		return
	}
	select {
	case r.Progress <- fraction:
	default:
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.New(slog.DiscardHandler)
}
