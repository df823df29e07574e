package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// endDateLayout matches the folder-name date groups.
const endDateLayout = "02-01-06"

// Config is the full surface for one run. Values come from the environment
// (optionally via .env), with command-line flags taking precedence.
type Config struct {
	SourcePath string `env:"SOURCE_PATH"`
	ParentDir  string `env:"PARENT_DIR"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPSSL      bool   `env:"SMTP_SSL" envDefault:"false"`
	SenderEmail  string `env:"SENDER_EMAIL"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	EmailDelimiter string `env:"EMAIL_DELIMITER" envDefault:";"`

	// EndDate in dd-mm-yy; empty means "pick the folder with the latest
	// end date".
	EndDate string `env:"END_DATE"`

	Subject string `env:"MAIL_SUBJECT" envDefault:"Your statement"`
	Body    string `env:"MAIL_BODY" envDefault:"Hello, please find your statement attached."`

	DryRun bool `env:"DRY_RUN" envDefault:"false"`
	Batch  bool
}

// Load reads .env if present, parses the environment and applies flag
// overrides. It calls flag.Parse.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	flag.StringVar(&cfg.SourcePath, "source", cfg.SourcePath, "Path to the .xlsx or .csv source file")
	flag.StringVar(&cfg.ParentDir, "dir", cfg.ParentDir, "Parent directory containing the dated folders")
	flag.StringVar(&cfg.EndDate, "end-date", cfg.EndDate, "Target folder end date (dd-mm-yy); empty picks the latest")
	flag.StringVar(&cfg.EmailDelimiter, "delimiter", cfg.EmailDelimiter, "Delimiter between addresses in the email column")
	flag.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Resolve attachments and report without sending")
	flag.BoolVar(&cfg.Batch, "batch", false, "Run headless instead of launching the interactive wizard")
	flag.Parse()

	return cfg, nil
}

// Validate checks everything a batch run needs before any work starts.
// The interactive wizard collects missing values itself, so it validates a
// smaller subset.
func (c *Config) Validate() error {
	if c.SourcePath == "" {
		return fmt.Errorf("source path not set (SOURCE_PATH or -source)")
	}
	if c.ParentDir == "" {
		return fmt.Errorf("parent directory not set (PARENT_DIR or -dir)")
	}
	if c.EmailDelimiter == "" {
		return fmt.Errorf("email delimiter must not be empty")
	}
	if _, _, err := c.TargetEndDate(); err != nil {
		return err
	}
	if c.DryRun {
		return nil
	}
	if c.SMTPHost == "" {
		return fmt.Errorf("SMTP host not set (SMTP_HOST)")
	}
	if c.SenderEmail == "" {
		return fmt.Errorf("sender email not set (SENDER_EMAIL)")
	}
	return nil
}

// TargetEndDate parses the configured end date. ok is false when no end date
// is configured and the latest folder should win.
func (c *Config) TargetEndDate() (target time.Time, ok bool, err error) {
	if c.EndDate == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(endDateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid end date %q (want dd-mm-yy): %w", c.EndDate, err)
	}
	return t, true, nil
}
