package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avogel/mailslip/internal/batch"
	"github.com/avogel/mailslip/internal/config"
	"github.com/avogel/mailslip/internal/folder"
	"github.com/avogel/mailslip/internal/mailer"
	"github.com/avogel/mailslip/internal/source"
	"github.com/avogel/mailslip/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	statePassword
	stateLoading
	stateConfirm
	stateSending
	stateSummary
	stateError
)

type Model struct {
	cfg   *config.Config
	state state

	filepicker   filepicker.Model
	passwordIn   textinput.Model
	selectedFile string
	password     string

	previewFolder  types.DatedFolder
	previewRecords []types.Record

	summary *types.RunSummary
	err     error

	width  int
	height int

	progress     progress.Model
	progressChan chan float64
	resultChan   chan runResultMsg
}

type previewLoadedMsg struct {
	folder  types.DatedFolder
	records []types.Record
	err     error
}

type runResultMsg struct {
	summary *types.RunSummary
	err     error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(cfg *config.Config) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#4FA3FF"))
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CC3FF"))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#4FA3FF")).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	pw := textinput.New()
	pw.Placeholder = "SMTP password"
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	prog := progress.New(progress.WithGradient("#4FA3FF", "#9CC3FF"))

	m := Model{
		cfg:        cfg,
		state:      stateFilePicker,
		filepicker: fp,
		passwordIn: pw,
		progress:   prog,
	}

	// A preconfigured source skips the picker.
	if cfg.SourcePath != "" {
		m.selectedFile = cfg.SourcePath
		if cfg.DryRun || cfg.SMTPPassword != "" {
			m.password = cfg.SMTPPassword
			m.state = stateLoading
		} else {
			m.passwordIn.Focus()
			m.state = statePassword
		}
	}

	return m
}

func (m Model) Init() tea.Cmd {
	switch m.state {
	case statePassword:
		return textinput.Blink
	case stateLoading:
		return m.loadPreview()
	default:
		return m.filepicker.Init()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		height := msg.Height - 14
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case statePassword:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				if m.passwordIn.Value() != "" {
					m.password = m.passwordIn.Value()
					m.state = stateLoading
					return m, m.loadPreview()
				}
			}
			var cmd tea.Cmd
			m.passwordIn, cmd = m.passwordIn.Update(msg)
			return m, cmd

		case stateConfirm:
			switch msg.String() {
			case "ctrl+c", "q", "esc":
				return m, tea.Quit
			case "enter", "y":
				m.state = stateSending
				return m.startRun()
			}

		case stateSummary, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case previewLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.previewFolder = msg.folder
		m.previewRecords = msg.records
		m.state = stateConfirm
		return m, nil

	case runResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.summary = msg.summary
		m.state = stateSummary
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateSending {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			if m.cfg.DryRun || m.cfg.SMTPPassword != "" {
				m.password = m.cfg.SMTPPassword
				m.state = stateLoading
				return m, m.loadPreview()
			}
			m.passwordIn.Focus()
			m.state = statePassword
			return m, textinput.Blink
		}

		return m, cmd
	}

	if m.state == statePassword {
		var cmd tea.Cmd
		m.passwordIn, cmd = m.passwordIn.Update(msg)
		return m, cmd
	}

	return m, nil
}

// loadPreview resolves the dated folder and loads the source so the confirm
// screen can show what a run would do before anything is sent.
func (m Model) loadPreview() tea.Cmd {
	cfg := m.cfg
	sourceFile := m.selectedFile

	return func() tea.Msg {
		folders, err := folder.Scan(cfg.ParentDir)
		if err != nil {
			return previewLoadedMsg{err: err}
		}

		target, useEndDate, err := cfg.TargetEndDate()
		if err != nil {
			return previewLoadedMsg{err: err}
		}

		var selected types.DatedFolder
		var ok bool
		if useEndDate {
			selected, ok = folder.SelectByEndDate(folders, target)
		} else {
			selected, ok = folder.SelectLatest(folders)
		}
		if !ok {
			return previewLoadedMsg{err: fmt.Errorf("%w in %s", folder.ErrNoDatedFolders, cfg.ParentDir)}
		}

		records, err := source.Load(sourceFile, cfg.EmailDelimiter)
		if err != nil {
			return previewLoadedMsg{err: err}
		}

		return previewLoadedMsg{folder: selected, records: records}
	}
}

func (m Model) startRun() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan runResultMsg, 1)

	cfg := m.cfg
	target, useEndDate, _ := cfg.TargetEndDate()

	runner := &batch.Runner{
		SourcePath:     m.selectedFile,
		ParentDir:      cfg.ParentDir,
		EmailDelimiter: cfg.EmailDelimiter,
		TargetEndDate:  target,
		UseEndDate:     useEndDate,
		Subject:        cfg.Subject,
		Body:           cfg.Body,
		DryRun:         cfg.DryRun,
		Sender: mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			SSL:      cfg.SMTPSSL,
			From:     cfg.SenderEmail,
			Password: m.password,
		}),
		Progress: m.progressChan,
	}

	progressChan := m.progressChan
	resultChan := m.resultChan

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				summary, err := runner.Run()
				resultChan <- runResultMsg{summary: summary, err: err}
				close(progressChan)
				close(resultChan)
			}()
			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan runResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return res
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case statePassword:
		return m.viewPassword()
	case stateLoading:
		return m.viewLoading()
	case stateConfirm:
		return m.viewConfirm()
	case stateSending:
		return m.viewSending()
	case stateSummary:
		return m.viewSummary()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✉ Mailslip"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select the CSV or XLSX file with the recipient list"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewPassword() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✉ SMTP Password"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Sending as %s via %s", m.cfg.SenderEmail, m.cfg.SMTPHost)))
	s.WriteString("\n\n")
	s.WriteString(m.passwordIn.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter: continue • ctrl+c: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewLoading() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✉ Resolving..."))
	s.WriteString("\n\n")
	s.WriteString("Scanning dated folders and loading the recipient list...")

	return BoxStyle.Render(s.String())
}

func (m Model) viewConfirm() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✉ Ready to Send"))
	s.WriteString("\n\n")

	s.WriteString(LabelStyle.Render("Source:  "))
	s.WriteString(ValueStyle.Render(filepath.Base(m.selectedFile)))
	s.WriteString("\n")
	s.WriteString(LabelStyle.Render("Folder:  "))
	s.WriteString(ValueStyle.Render(m.previewFolder.Path))
	s.WriteString("\n")
	s.WriteString(LabelStyle.Render("Ends:    "))
	s.WriteString(ValueStyle.Render(m.previewFolder.EndDate.Format("02 Jan 2006")))
	s.WriteString("\n")
	s.WriteString(LabelStyle.Render("Records: "))
	s.WriteString(ValueStyle.Render(fmt.Sprintf("%d", len(m.previewRecords))))
	s.WriteString("\n")

	if m.cfg.DryRun {
		s.WriteString("\n")
		s.WriteString(WarnStyle.Render("Dry run: nothing will be sent"))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: start • esc: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewSending() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✉ Sending..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Emailing PDFs from %s...", filepath.Base(m.previewFolder.Path)))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewSummary() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Run Complete"))
	s.WriteString("\n\n")

	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Sent:    %d\n", m.summary.Sent)))
	s.WriteString(WarnStyle.Render(fmt.Sprintf("Skipped: %d\n", m.summary.Skipped)))
	s.WriteString(ErrorStyle.Render(fmt.Sprintf("Failed:  %d\n", m.summary.Failed)))

	var notes []string
	for _, o := range m.summary.Outcomes {
		if o.Status != types.StatusSent {
			notes = append(notes, fmt.Sprintf("%s: %s (%s)", o.RecordID, o.Status, o.Reason))
		}
	}
	if len(notes) > 0 {
		s.WriteString("\n")
		maxNotes := 10
		if len(notes) > maxNotes {
			notes = append(notes[:maxNotes], fmt.Sprintf("...and %d more", len(notes)-maxNotes))
		}
		s.WriteString(LabelStyle.Render(strings.Join(notes, "\n")))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}
