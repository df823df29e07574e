package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/avogel/mailslip/internal/batch"
	"github.com/avogel/mailslip/internal/config"
	"github.com/avogel/mailslip/internal/creds"
	"github.com/avogel/mailslip/internal/mailer"
	"github.com/avogel/mailslip/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("mailslip %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Batch {
		if err := runBatch(cfg); err != nil {
			slog.Error("run aborted", "error", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(ui.InitialModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// runBatch is the headless path: everything comes from the environment and
// flags, outcomes go to stdout as log lines. Per-record failures do not
// affect the exit code; only an aborted run exits non-zero.
func runBatch(cfg *config.Config) error {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := cfg.Validate(); err != nil {
		return err
	}

	target, useEndDate, err := cfg.TargetEndDate()
	if err != nil {
		return err
	}

	runner := &batch.Runner{
		SourcePath:     cfg.SourcePath,
		ParentDir:      cfg.ParentDir,
		EmailDelimiter: cfg.EmailDelimiter,
		TargetEndDate:  target,
		UseEndDate:     useEndDate,
		Subject:        cfg.Subject,
		Body:           cfg.Body,
		DryRun:         cfg.DryRun,
		Log:            log,
	}

	if !cfg.DryRun {
		provider := creds.Provider(creds.Static(cfg.SMTPPassword))
		password, err := provider.Password()
		if err != nil {
			return fmt.Errorf("SMTP password: %w (set SMTP_PASSWORD or use the interactive mode)", err)
		}
		runner.Sender = mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			SSL:      cfg.SMTPSSL,
			From:     cfg.SenderEmail,
			Password: password,
		})
	}

	summary, err := runner.Run()
	if err != nil {
		return err
	}

	log.Info("run complete",
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"folder", summary.Folder,
	)
	return nil
}
