package tui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/paramdeck/internal/binding"
	"github.com/jask/paramdeck/internal/layout"
	"github.com/jask/paramdeck/internal/parameter"
	"github.com/jask/paramdeck/internal/scheduler"
	"github.com/jask/paramdeck/internal/sdk"
	"github.com/jask/paramdeck/internal/service"
	"github.com/jask/paramdeck/internal/store"
)

// App is the parameter panel of one session.
type App struct {
	ctx       context.Context
	store     *store.Store
	sessionID string
	services  Services
	opts      Options
	sched     *scheduler.Debouncer
	log       *slog.Logger

	bindings   map[string]*binding.Binding // parameter id -> binding
	containers []layout.Resolved
	rows       []row
	cursor     int

	mode  inputMode
	input textinput.Model
	spin  spinner.Model
	keys  keyMap

	status string
	width  int

	events chan tea.Msg
	unsub  func()
}

type Services struct {
	Snapshots *service.SnapshotService
	Exports   *service.ExportService
}

type Options struct {
	Binding binding.Options
	// LayoutPath is loaded and watched when set. A missing file falls back
	// to the generated layout.
	LayoutPath string
	Logger     *slog.Logger
}

type inputMode string

const (
	modeNone     inputMode = ""
	modeValue    inputMode = "value"
	modeSnapshot inputMode = "snapshot"
)

type row struct {
	container int
	param     *binding.Binding
	export    sdk.ExportDefinition
}

func (r row) isExport() bool { return r.param == nil }

func New(ctx context.Context, st *store.Store, sessionID string, services Services, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	in := textinput.New()
	in.CharLimit = 256
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	a := &App{
		ctx:       ctx,
		store:     st,
		sessionID: sessionID,
		services:  services,
		opts:      opts,
		sched:     scheduler.NewDebouncer(),
		log:       logger,
		bindings:  map[string]*binding.Binding{},
		input:     in,
		spin:      spin,
		keys:      defaultKeys(),
		events:    make(chan tea.Msg, 64),
	}

	bopts := opts.Binding
	bopts.Context = ctx
	bopts.OnError = func(err error) { a.send(errMsg{err}) }
	bopts.OnCommit = func(v string, accepted bool) {
		if !accepted {
			a.send(statusMsg(fmt.Sprintf("rejected value %q", v)))
		}
	}
	for id, p := range st.Parameters(sessionID) {
		a.bindings[id] = binding.New(p, st, a.sched, bopts)
	}
	a.unsub = st.Subscribe(func(ev store.Event) {
		if ev.SessionID == sessionID && ev.Kind != store.ParameterChanged {
			a.send(storeEventMsg(ev))
		}
	})

	l := layout.Default(st, sessionID)
	if opts.LayoutPath != "" {
		loaded, err := layout.Load(opts.LayoutPath)
		switch {
		case err == nil:
			l = loaded
		case !errors.Is(err, fs.ErrNotExist):
			a.status = "layout: " + err.Error()
		}
	}
	a.applyLayout(l)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.waitEvent(), a.spin.Tick, a.watchLayout())
}

// Close stops pending commits and event forwarding.
func (a *App) Close() {
	a.unsub()
	for _, b := range a.bindings {
		b.Close()
	}
	a.sched.Stop()
}

// send forwards msg from background goroutines. Messages are dropped when
// the UI falls behind; the view reads state from the store anyway.
func (a *App) send(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
		a.log.Debug("tui event dropped", "msg", fmt.Sprintf("%T", msg))
	}
}

func (a *App) waitEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case m := <-a.events:
			return forwardedMsg{m}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) watchLayout() tea.Cmd {
	if a.opts.LayoutPath == "" {
		return nil
	}
	return func() tea.Msg {
		err := layout.Watch(a.ctx, a.opts.LayoutPath, func(l layout.Layout, err error) {
			a.send(layoutMsg{layout: l, err: err})
		})
		if err != nil {
			return errMsg{fmt.Errorf("watch layout: %w", err)}
		}
		return nil
	}
}

func (a *App) applyLayout(l layout.Layout) {
	a.containers = layout.Resolve(l, a.store, a.sessionID)
	a.rows = a.rows[:0]
	for ci, c := range a.containers {
		for _, e := range c.Parameters {
			if b, ok := a.bindings[e.Definition.ID]; ok {
				a.rows = append(a.rows, row{container: ci, param: b})
			}
		}
		for _, e := range c.Exports {
			a.rows = append(a.rows, row{container: ci, export: e.Definition})
		}
	}
	if a.cursor >= len(a.rows) {
		a.cursor = max(len(a.rows)-1, 0)
	}
}

func (a *App) current() (row, bool) {
	if a.cursor < 0 || a.cursor >= len(a.rows) {
		return row{}, false
	}
	return a.rows[a.cursor], true
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.mode != modeNone {
			return a.handleInputKey(m)
		}
		return a.handleKey(m)
	case forwardedMsg:
		model, cmd := a.Update(m.msg)
		return model, tea.Batch(cmd, a.waitEvent())
	case storeEventMsg:
		switch m.Kind {
		case store.ExecutionFinished:
			if m.Err != nil {
				a.status = "customization failed: " + m.Err.Error()
			}
		case store.SessionRemoved:
			a.status = "session closed"
		}
	case layoutMsg:
		if m.err != nil {
			a.status = "layout: " + m.err.Error()
			return a, nil
		}
		a.applyLayout(m.layout)
		a.status = "layout reloaded"
	case exportDoneMsg:
		switch {
		case m.SavedPath != "":
			a.status = "saved " + m.SavedPath
		case m.Msg != "":
			a.status = m.Msg
		default:
			a.status = "export requested"
		}
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.log.Warn("tui error", "err", m.error)
		a.status = "error: " + m.Error()
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(m)
		return a, cmd
	case tea.WindowSizeMsg:
		a.width = m.Width
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		a.Close()
		return a, tea.Quit
	case key.Matches(m, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case key.Matches(m, a.keys.Down):
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}
		return a, nil
	case key.Matches(m, a.keys.Accept):
		if !a.opts.Binding.AcceptRejectMode {
			return a, nil
		}
		return a, a.acceptCmd()
	case key.Matches(m, a.keys.Reject):
		if !a.opts.Binding.AcceptRejectMode {
			return a, nil
		}
		a.store.Reject(a.sessionID)
		a.status = "changes rejected"
		return a, nil
	case key.Matches(m, a.keys.Snapshot):
		if a.services.Snapshots == nil {
			a.status = "snapshots unavailable"
			return a, nil
		}
		a.mode = modeSnapshot
		a.input.Prompt = "snapshot name: "
		a.input.SetValue("")
		return a, a.input.Focus()
	}

	r, ok := a.current()
	if !ok {
		return a, nil
	}
	if r.isExport() {
		if key.Matches(m, a.keys.Edit) {
			a.status = "exporting " + r.export.Label() + "..."
			return a, a.exportCmd(r.export.ID)
		}
		return a, nil
	}

	b := r.param
	def := b.Handle().Definition()
	switch {
	case key.Matches(m, a.keys.Cancel):
		if b.Cancel() {
			a.status = "reverted " + def.Label()
		}
		return a, nil
	case b.Disabled():
		a.status = def.Label() + " is busy"
		return a, nil
	case key.Matches(m, a.keys.Inc), key.Matches(m, a.keys.Dec):
		dir := 1
		if key.Matches(m, a.keys.Dec) {
			dir = -1
		}
		if next, ok := step(def, b.Value(), dir); ok {
			b.HandleChange(next)
		}
	case key.Matches(m, a.keys.Toggle):
		if def.Type == sdk.TypeBool {
			next, _ := step(def, b.Value(), 1)
			b.HandleChange(next)
		}
	case key.Matches(m, a.keys.Default):
		// the default shows at once; committing it skips the debounce
		b.Handle().ResetToDefaultValue()
		b.HandleChangeAfter(b.Handle().State().UIValue, 0)
	case key.Matches(m, a.keys.Edit):
		if !editable(def) {
			if next, ok := step(def, b.Value(), 1); ok {
				b.HandleChange(next)
			}
			return a, nil
		}
		a.mode = modeValue
		a.input.Prompt = def.Label() + ": "
		a.input.SetValue(b.Value())
		a.input.CursorEnd()
		return a, a.input.Focus()
	}
	return a, nil
}

func (a *App) handleInputKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.endInput()
		return a, nil
	case tea.KeyEnter:
		v := a.input.Value()
		mode := a.mode
		a.endInput()
		if mode == modeSnapshot {
			return a, a.snapshotCmd(v)
		}
		r, ok := a.current()
		if !ok || r.isExport() {
			return a, nil
		}
		if _, err := r.param.Handle().IsValid(v, true); err != nil {
			a.status = err.Error()
			return a, nil
		}
		r.param.HandleChange(v)
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return a, cmd
}

func (a *App) endInput() {
	a.mode = modeNone
	a.input.Blur()
}

func (a *App) acceptCmd() tea.Cmd {
	return func() tea.Msg {
		for _, b := range a.bindings {
			b.Settle()
		}
		if err := a.store.Accept(a.ctx, a.sessionID); err != nil {
			return errMsg{err}
		}
		return statusMsg("changes accepted")
	}
}

func (a *App) exportCmd(id string) tea.Cmd {
	return func() tea.Msg {
		var (
			res parameter.Result
			err error
		)
		if a.services.Exports != nil {
			res, err = a.services.Exports.Request(a.ctx, a.sessionID, store.ByID(id), nil)
		} else {
			exp, ok := a.store.Export(a.sessionID, store.ByID(id))
			if !ok {
				return errMsg{store.ErrExportNotFound}
			}
			res, err = exp.Request(a.ctx, nil)
		}
		if err != nil {
			return errMsg{err}
		}
		return exportDoneMsg(res)
	}
}

func (a *App) snapshotCmd(name string) tea.Cmd {
	return func() tea.Msg {
		snap, err := a.services.Snapshots.Save(a.ctx, a.sessionID, name)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("snapshot %q saved", snap.Name))
	}
}

type forwardedMsg struct{ msg tea.Msg }

type storeEventMsg store.Event

type layoutMsg struct {
	layout layout.Layout
	err    error
}

type exportDoneMsg parameter.Result

type statusMsg string

type errMsg struct{ error }

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	groupStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	dirtyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func (a *App) View() string {
	var b strings.Builder
	title := a.sessionID
	if s, ok := a.store.Session(a.sessionID); ok {
		title = s.ModelID()
	}
	b.WriteString(titleStyle.Render(title))
	if a.store.Executing(a.sessionID) {
		b.WriteString(" " + a.spin.View() + " customizing")
	}
	b.WriteString("\n")

	labelWidth := 0
	for _, r := range a.rows {
		if !r.isExport() {
			labelWidth = max(labelWidth, len(r.param.Handle().Definition().Label()))
		}
	}

	idx := 0
	for ci, c := range a.containers {
		b.WriteString("\n" + groupStyle.Render(c.Name) + "\n")
		for idx < len(a.rows) && a.rows[idx].container == ci {
			b.WriteString(a.renderRow(a.rows[idx], idx == a.cursor, labelWidth) + "\n")
			idx++
		}
	}

	if r, ok := a.current(); ok && !r.isExport() {
		if tip := r.param.Handle().Definition().Tooltip; tip != "" {
			b.WriteString("\n" + dimStyle.Render(tip) + "\n")
		}
	}
	if a.mode != modeNone {
		b.WriteString("\n" + a.input.View() + "\n")
	}
	if a.status != "" {
		b.WriteString("\n" + a.status + "\n")
	}
	b.WriteString("\n" + dimStyle.Render(a.helpLine()))
	return b.String()
}

func (a *App) renderRow(r row, selected bool, labelWidth int) string {
	cursor := "  "
	if selected {
		cursor = selectedStyle.Render("> ")
	}
	if r.isExport() {
		line := "⇩ " + r.export.Label()
		if r.export.Type == sdk.ExportEmail {
			line = "✉ " + r.export.Label()
		}
		return cursor + line
	}
	p := r.param
	def := p.Handle().Definition()
	line := fmt.Sprintf("%-*s  %s", labelWidth, def.Label(), renderValue(def, p.Value()))
	switch {
	case p.Disabled():
		line = dimStyle.Render(line)
	case p.Pending():
		line += dimStyle.Render(" …")
	case p.Handle().State().Dirty():
		line += dirtyStyle.Render(" *")
	}
	return cursor + line
}

func (a *App) helpLine() string {
	parts := make([]string, 0, 12)
	for _, k := range a.keys.help(a.opts.Binding.AcceptRejectMode) {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
