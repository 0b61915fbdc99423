// Package tui renders a live view of a sync run with Bubbletea.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
)

// SyncView shows each pipeline checkpoint as it is reported, with a
// spinner on the current one, and a summary once the run ends. It quits
// on its own when the run completes.
type SyncView struct {
	orch   driving.SyncOrchestrator
	ctx    context.Context
	cancel context.CancelFunc

	// events carries progress lines and the final result from the run.
	events chan tea.Msg

	spinner spinner.Model
	styles  *styles.Styles
	keys    *keymap.KeyMap

	lines  []string
	done   bool
	result messages.SyncCompleted
}

// NewSyncView creates a view that runs orch when started.
func NewSyncView(ctx context.Context, orch driving.SyncOrchestrator) (*SyncView, error) {
	if orch == nil {
		return nil, ErrMissingSyncOrchestrator
	}

	st := styles.DefaultStyles()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.Spinner

	ctx, cancel := context.WithCancel(ctx)
	return &SyncView{
		orch:    orch,
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan tea.Msg, 16),
		spinner: sp,
		styles:  st,
		keys:    keymap.DefaultKeyMap(),
	}, nil
}

// Init starts the spinner and the run.
func (v *SyncView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.run(), v.wait())
}

// Update handles pipeline events, spinner ticks and key presses.
func (v *SyncView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.Progress:
		v.lines = append(v.lines, msg.Text)
		return v, v.wait()

	case messages.SyncCompleted:
		v.done = true
		v.result = msg
		v.cancel()
		return v, tea.Quit

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), v.keys.Quit) {
			v.cancel()
			return v, tea.Quit
		}
		return v, nil

	case spinner.TickMsg:
		if v.done {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	return v, nil
}

// View renders the checkpoints and, when finished, the summary.
func (v *SyncView) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("OmniTicket sync"))
	b.WriteString("\n\n")

	for i, line := range v.lines {
		last := i == len(v.lines)-1
		switch {
		case last && !v.done:
			fmt.Fprintf(&b, "%s %s\n", v.spinner.View(), v.styles.Current.Render(line))
		default:
			fmt.Fprintf(&b, "%s\n", v.styles.Done.Render("✓ "+line))
		}
	}
	if len(v.lines) == 0 && !v.done {
		fmt.Fprintf(&b, "%s %s\n", v.spinner.View(), "Starting...")
	}

	if !v.done {
		b.WriteString("\n")
		for _, k := range v.keys.ShortHelp() {
			b.WriteString(v.styles.Help.Render(k.Help().Key + " " + k.Help().Desc))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(v.summary())
	return b.String()
}

// Result returns the outcome of the run. It is only meaningful after the
// program exits.
func (v *SyncView) Result() messages.SyncCompleted {
	return v.result
}

func (v *SyncView) summary() string {
	if v.result.Err != nil {
		return v.styles.Error.Render("Sync failed: "+v.result.Err.Error()) + "\n"
	}

	failures := v.result.Failures()
	line := fmt.Sprintf("Processed %d ticket(s), %d failed", v.result.Succeeded(), len(failures))

	var b strings.Builder
	if len(failures) == 0 {
		b.WriteString(v.styles.Success.Render(line))
	} else {
		b.WriteString(v.styles.Warning.Render(line))
	}
	b.WriteString("\n")
	for _, f := range failures {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("  ✗ %s: %s", f.SourceID, f.Error)))
		b.WriteString("\n")
	}
	return b.String()
}

// run executes the orchestrator, forwarding progress lines to events.
func (v *SyncView) run() tea.Cmd {
	return func() tea.Msg {
		results, err := v.orch.Run(v.ctx, func(msg string) {
			v.emit(messages.Progress{Text: msg})
		})
		v.emit(messages.SyncCompleted{Results: results, Err: err})
		return nil
	}
}

// emit delivers an event unless the view has been closed.
func (v *SyncView) emit(msg tea.Msg) {
	select {
	case v.events <- msg:
	case <-v.ctx.Done():
		// A completion must still reach a view that was cancelled by the
		// user so the program can exit with the partial results.
		if _, ok := msg.(messages.SyncCompleted); ok {
			select {
			case v.events <- msg:
			default:
			}
		}
	}
}

// wait blocks for the next pipeline event.
func (v *SyncView) wait() tea.Cmd {
	return func() tea.Msg {
		return <-v.events
	}
}

// RunSync runs orch inside a Bubbletea program and returns the outcome.
func RunSync(ctx context.Context, orch driving.SyncOrchestrator, in io.Reader, out io.Writer) (messages.SyncCompleted, error) {
	view, err := NewSyncView(ctx, orch)
	if err != nil {
		return messages.SyncCompleted{}, err
	}

	p := tea.NewProgram(view, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return view.Result(), eris.Wrap(err, "sync view")
	}
	if !view.done {
		return view.Result(), context.Canceled
	}
	return view.Result(), nil
}
