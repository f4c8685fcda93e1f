package medform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/theme"
	"github.com/nhle/medreminder/internal/vision"
)

// SaveRequestMsg is dispatched when the user submits the form.
type SaveRequestMsg struct {
	Draft model.Medication
}

// CancelMsg is dispatched when the user leaves the form without saving.
type CancelMsg struct{}

// AnalysisDoneMsg carries the analyzer's suggestion for the chosen photo.
// A nil Suggestion means nothing could be read.
type AnalysisDoneMsg struct {
	Path       string
	Suggestion *vision.Suggestion
	Err        error
}

type stage int

const (
	stagePhoto stage = iota
	stageAnalyzing
	stageDetails
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	photo        string
	name         string
	dosage       string
	pills        float64
	instruction  string
	periods      []model.Period
	days         []int
	syncRelative bool
	contact      string
}

// Model is the Bubble Tea model for the add-medication form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	stage    stage
	spinner  spinner.Model
	analyzer vision.Analyzer
	timeout  time.Duration
	logger   *slog.Logger
	notice   string
	errMsg   string
	width    int
	height   int
}

// New creates a new form model. analyzer may be nil, in which case photos
// are attached without analysis.
func New(analyzer vision.Analyzer, timeout time.Duration, logger *slog.Logger, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorYellow)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return Model{
		fb:       &formBindings{},
		spinner:  sp,
		analyzer: analyzer,
		timeout:  timeout,
		logger:   logging.OrDiscard(logger),
		width:    width,
		height:   height,
	}
}

// Start resets the form to a fresh draft and opens the photo step.
func (m *Model) Start() tea.Cmd {
	m.load(model.NewDraft())
	m.fb.photo = ""
	m.notice = ""
	m.errMsg = ""
	m.stage = stagePhoto
	m.form = m.buildPhotoForm()
	return m.form.Init()
}

// ShowError reopens the details step with the values the user entered and
// a message explaining why saving failed.
func (m *Model) ShowError(err error) tea.Cmd {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		m.errMsg = verr.Message()
	} else {
		m.errMsg = "Could not save: " + err.Error()
	}
	m.stage = stageDetails
	m.form = m.buildDetailsForm()
	return m.form.Init()
}

// Draft returns the medication described by the current field values.
func (m Model) Draft() model.Medication {
	d := model.NewDraft()
	d.Name = strings.TrimSpace(m.fb.name)
	d.Dosage = strings.TrimSpace(m.fb.dosage)
	d.PillsPerTime = m.fb.pills
	d.Instruction = strings.TrimSpace(m.fb.instruction)
	d.Image = strings.TrimSpace(m.fb.photo)
	d.Periods = model.SortPeriods(m.fb.periods)
	d.RepeatDays = append([]int(nil), m.fb.days...)
	d.SyncRelative = m.fb.syncRelative
	d.RelativeContact = strings.TrimSpace(m.fb.contact)
	return d
}

func (m *Model) load(d model.Medication) {
	m.fb.name = d.Name
	m.fb.dosage = d.Dosage
	m.fb.pills = d.PillsPerTime
	m.fb.instruction = d.Instruction
	m.fb.periods = append([]model.Period(nil), d.Periods...)
	m.fb.days = append([]int(nil), d.RepeatDays...)
	m.fb.syncRelative = d.SyncRelative
	m.fb.contact = d.RelativeContact
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case AnalysisDoneMsg:
		if m.stage != stageAnalyzing || msg.Path != m.fb.photo {
			return m, nil
		}
		if msg.Err != nil {
			m.notice = msg.Err.Error()
		} else if msg.Suggestion == nil {
			m.notice = "No suggestions available, please fill in the details."
		} else {
			m.load(msg.Suggestion.Apply(m.Draft()))
			m.notice = "Details filled in from the photo. Please check them."
		}
		m.stage = stageDetails
		m.form = m.buildDetailsForm()
		return m, m.form.Init()

	case spinner.TickMsg:
		if m.stage != stageAnalyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			m.form = nil
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	if m.form == nil || m.stage == stageAnalyzing {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}
	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.stage {
	case stagePhoto:
		return m, m.afterPhoto()
	default:
		draft := m.Draft()
		return m, func() tea.Msg { return SaveRequestMsg{Draft: draft} }
	}
}

// afterPhoto starts analysis when a photo was chosen and an analyzer is
// configured, otherwise moves straight to the details step.
func (m *Model) afterPhoto() tea.Cmd {
	path := expandHome(strings.TrimSpace(m.fb.photo))
	m.fb.photo = path

	if path == "" || m.analyzer == nil {
		if path != "" {
			m.notice = "Photo attached. Automatic reading is not configured."
		}
		m.stage = stageDetails
		m.form = m.buildDetailsForm()
		return m.form.Init()
	}

	m.stage = stageAnalyzing
	return tea.Batch(m.spinner.Tick, m.analyze(path))
}

func (m Model) analyze(path string) tea.Cmd {
	a, timeout, logger := m.analyzer, m.timeout, m.logger
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("reading medication photo", slog.String("path", path), slog.Any("error", err))
			return AnalysisDoneMsg{Path: path, Err: fmt.Errorf("could not open %s", filepath.Base(path))}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return AnalysisDoneMsg{Path: path, Suggestion: vision.Suggest(ctx, a, data, logger)}
	}
}

// View renders the form.
func (m Model) View() string {
	title := theme.TitleStyle.Render("➕ Add medication")

	var body string
	switch {
	case m.stage == stageAnalyzing:
		body = m.spinner.View() + " Reading the photo..."
	case m.form != nil:
		body = m.form.View()
	}

	parts := []string{title}
	if m.errMsg != "" {
		parts = append(parts, theme.ErrorStyle.Render("⚠ "+m.errMsg))
	}
	if m.notice != "" && m.stage != stageAnalyzing {
		parts = append(parts, theme.HelpStyle.Render(m.notice))
	}
	parts = append(parts, body)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Busy reports whether the form is waiting on image analysis.
func (m Model) Busy() bool {
	return m.stage == stageAnalyzing
}

func (m *Model) buildPhotoForm() *huh.Form {
	desc := "Path to a photo of the package or label. Leave empty to skip."
	if m.analyzer != nil {
		desc = "The name and dosage will be read from the photo. Leave empty to skip."
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("📸 Photo").
				Description(desc).
				Placeholder("~/Pictures/medication.jpg").
				Value(&m.fb.photo).
				Validate(validatePhoto),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildDetailsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Medication name").
				Placeholder("e.g. Metformin").
				Value(&m.fb.name),
			huh.NewInput().
				Title("Dosage").
				Placeholder("e.g. 500 mg, optional").
				Value(&m.fb.dosage),
			huh.NewSelect[float64]().
				Title("Pills per dose").
				Options(pillOptions(m.fb.pills)...).
				Value(&m.fb.pills),
			huh.NewText().
				Title("Instruction").
				Placeholder("e.g. after meals, optional").
				Value(&m.fb.instruction),
		).Title("1. Medication"),

		huh.NewGroup(
			huh.NewMultiSelect[model.Period]().
				Title("When do you take it?").
				Options(periodOptions()...).
				Value(&m.fb.periods),
			huh.NewMultiSelect[int]().
				Title("Which days?").
				Options(dayOptions()...).
				Value(&m.fb.days),
		).Title("2. Schedule"),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Notify a caregiver when you take it?").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.syncRelative),
		).Title("3. Caregiver"),

		huh.NewGroup(
			huh.NewInput().
				Title("Caregiver phone number").
				Placeholder("08X-XXX-XXXX").
				Value(&m.fb.contact),
		).WithHideFunc(func() bool { return !m.fb.syncRelative }),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// pillOptions offers half-pill steps up to six, plus current if it is
// larger.
func pillOptions(current float64) []huh.Option[float64] {
	var opts []huh.Option[float64]
	seen := false
	for n := model.MinPills; n <= 6; n = model.StepPills(n, 1) {
		opts = append(opts, huh.NewOption(pillLabel(n), n))
		if n == current {
			seen = true
		}
	}
	if !seen && model.ValidPills(current) {
		opts = append(opts, huh.NewOption(pillLabel(current), current))
	}
	return opts
}

func pillLabel(n float64) string {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if n == 1 {
		return s + " pill"
	}
	return s + " pills"
}

func periodOptions() []huh.Option[model.Period] {
	opts := make([]huh.Option[model.Period], len(model.Periods))
	for i, p := range model.Periods {
		opts[i] = huh.NewOption(fmt.Sprintf("%s %s (%s)", p.Glyph(), p.Label(), p.Clock()), p)
	}
	return opts
}

// dayOptions lists Monday first, Sunday last.
func dayOptions() []huh.Option[int] {
	order := []int{1, 2, 3, 4, 5, 6, 0}
	opts := make([]huh.Option[int], len(order))
	for i, d := range order {
		opts[i] = huh.NewOption(model.WeekdayFull[d], d)
	}
	return opts
}

func validatePhoto(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	info, err := os.Stat(expandHome(s))
	if err != nil {
		return fmt.Errorf("file not found")
	}
	if info.IsDir() {
		return fmt.Errorf("please choose a file, not a folder")
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}
