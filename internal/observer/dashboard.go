package observer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maestro-sh/maestro/internal/pipeline"
	"github.com/maestro-sh/maestro/pkg/models"
)

type eventMsg pipeline.Event

type streamClosedMsg struct{}

type stepRow struct {
	id       string
	name     string
	status   models.StepStatus
	progress int
	message  string
	model    string
	duration time.Duration
}

// Dashboard is a live terminal view of one pipeline run. It consumes the
// run's event channel and quits when the stream closes.
type Dashboard struct {
	events  <-chan pipeline.Event
	spinner spinner.Model
	order   []string
	rows    map[string]*stepRow
	done    bool

	titleStyle   lipgloss.Style
	runningStyle lipgloss.Style
	okStyle      lipgloss.Style
	errStyle     lipgloss.Style
	skipStyle    lipgloss.Style
	dimStyle     lipgloss.Style
}

// NewDashboard creates a dashboard over the declared steps and the run's
// event stream.
func NewDashboard(steps []pipeline.Step, events <-chan pipeline.Event) Dashboard {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	d := Dashboard{
		events:  events,
		spinner: sp,
		rows:    make(map[string]*stepRow),

		titleStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		runningStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		okStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		errStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		skipStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		dimStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
	for _, s := range steps {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		d.order = append(d.order, s.ID)
		d.rows[s.ID] = &stepRow{id: s.ID, name: name, status: models.StepStatusPending}
	}
	return d
}

// Init starts the spinner and the event pump.
func (d Dashboard) Init() tea.Cmd {
	return tea.Batch(d.spinner.Tick, d.wait())
}

func (d Dashboard) wait() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-d.events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update handles events, spinner ticks, and quit keys.
func (d Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case eventMsg:
		d.apply(pipeline.Event(msg))
		return d, d.wait()

	case streamClosedMsg:
		d.done = true
		return d, tea.Quit
	}
	return d, nil
}

func (d Dashboard) apply(ev pipeline.Event) {
	row, ok := d.rows[ev.StepID]
	if !ok {
		return
	}

	switch ev.Kind {
	case pipeline.EventStart:
		row.status = models.StepStatusRunning
	case pipeline.EventProgress:
		row.progress = ev.Progress
		row.message = ev.Message
	case pipeline.EventFileGenerated:
		row.message = ev.FilePath
	case pipeline.EventModelSwitch:
		row.model = ev.ModelID
	case pipeline.EventComplete:
		row.status = models.StepStatusComplete
		row.progress = 100
		row.model = ev.ModelID
		row.duration = ev.Duration
	case pipeline.EventError:
		row.status = models.StepStatusFailed
		row.message = ev.Error
	case pipeline.EventSkipped:
		row.status = models.StepStatusSkipped
		row.message = ev.Message
	}
}

// View renders the step table.
func (d Dashboard) View() string {
	var b strings.Builder
	b.WriteString(d.titleStyle.Render("maestro run"))
	b.WriteString("\n\n")

	for _, id := range d.order {
		row := d.rows[id]
		var glyph, detail string

		switch row.status {
		case models.StepStatusPending:
			glyph = d.dimStyle.Render("○")
		case models.StepStatusRunning:
			glyph = d.spinner.View()
			if row.progress > 0 {
				detail = d.dimStyle.Render(fmt.Sprintf("%d%% %s", row.progress, row.message))
			} else {
				detail = d.dimStyle.Render(row.message)
			}
		case models.StepStatusComplete:
			glyph = d.okStyle.Render("✓")
			detail = d.dimStyle.Render(row.duration.Round(time.Millisecond).String())
			if row.model != "" {
				detail += d.dimStyle.Render(" [" + row.model + "]")
			}
		case models.StepStatusFailed:
			glyph = d.errStyle.Render("✗")
			detail = d.errStyle.Render(row.message)
		case models.StepStatusSkipped:
			glyph = d.skipStyle.Render("⊘")
			detail = d.dimStyle.Render(row.message)
		}

		fmt.Fprintf(&b, " %s %-24s %s\n", glyph, row.name, detail)
	}

	b.WriteString("\n")
	if d.done {
		b.WriteString(d.dimStyle.Render("run finished, press q to exit"))
	} else {
		b.WriteString(d.dimStyle.Render("press q to quit"))
	}
	b.WriteString("\n")
	return b.String()
}

// RunDashboard blocks until the run's event stream closes or the user
// quits.
func RunDashboard(steps []pipeline.Step, events <-chan pipeline.Event) error {
	p := tea.NewProgram(NewDashboard(steps, events))
	_, err := p.Run()
	return err
}
