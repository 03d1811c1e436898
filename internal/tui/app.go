// Package tui is an interactive trace player: it steps through a recorded
// simulation tick by tick, showing the running process, the ready and wait
// states, resource ownership, and a growing gantt chart.
//
// It follows the Elm architecture bubbletea imposes: the Model holds all
// state, Update reacts to messages, View renders a string.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/me/schedsim/internal/workload"
	"github.com/me/schedsim/pkg/model"
)

const playInterval = 300 * time.Millisecond

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	waitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	helpStyle    = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

// playMsg drives auto-play; each one advances the playback by a tick.
type playMsg time.Time

// Model is the trace player state.
type Model struct {
	scheduler string
	wl        *workload.Workload
	events    []model.TraceEvent

	pos      int // events[0:pos] are applied
	playing  bool
	width    int
	progress progress.Model
}

// New creates a player over a completed run's trace.
func New(wl *workload.Workload, scheduler string, events []model.TraceEvent) Model {
	return Model{
		scheduler: scheduler,
		wl:        wl,
		events:    events,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// Run starts the player in the alternate screen and blocks until quit.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

func playTick() tea.Cmd {
	return tea.Tick(playInterval, func(t time.Time) tea.Msg { return playMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4

	case playMsg:
		if !m.playing {
			return m, nil
		}
		m.stepForward()
		if m.pos >= len(m.events) {
			m.playing = false
			return m, nil
		}
		return m, playTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.playing = !m.playing
			if m.playing {
				return m, playTick()
			}
		case "right", "l":
			m.stepForward()
		case "left", "h":
			m.stepBack()
		case "0", "home":
			m.pos = 0
		case "G", "end":
			m.pos = len(m.events)
		}
	}
	return m, nil
}

// stepForward applies events up to and including the next tick boundary.
func (m *Model) stepForward() {
	if m.pos >= len(m.events) {
		return
	}
	tick := m.events[m.pos].Tick
	for m.pos < len(m.events) && m.events[m.pos].Tick == tick {
		m.pos++
	}
}

// stepBack rewinds to the start of the previous tick.
func (m *Model) stepBack() {
	if m.pos == 0 {
		return
	}
	// Back off the current tick, then the one before it.
	i := m.pos - 1
	tick := m.events[i].Tick
	for i > 0 && m.events[i-1].Tick == tick {
		i--
	}
	m.pos = i
}

// frame is the reconstructed simulation state after applying a trace prefix.
type frame struct {
	tick    int
	status  map[int]string // PID -> READY/RUNNING/WAITING/EXITED
	prio    map[int]int
	owners  map[int]int   // resource -> PID
	waiters map[int][]int // resource -> PIDs
	ranAt   map[int]int   // tick -> PID (for the gantt)
	idleAt  map[int]bool
	last    string // description of the latest event
}

// replay folds events[0:pos] into a frame. Traces are short enough to replay
// on every render.
func (m Model) replay() frame {
	f := frame{
		status:  make(map[int]string),
		prio:    make(map[int]int),
		owners:  make(map[int]int),
		waiters: make(map[int][]int),
		ranAt:   make(map[int]int),
		idleAt:  make(map[int]bool),
	}
	running := model.NoPID

	for _, ev := range m.events[:m.pos] {
		f.tick = ev.Tick
		switch ev.Kind {
		case model.EventFork:
			f.status[ev.PID] = "READY"
			f.prio[ev.PID] = ev.Prio
		case model.EventRun:
			if running != model.NoPID && f.status[running] == "RUNNING" {
				f.status[running] = "READY"
			}
			f.status[ev.PID] = "RUNNING"
			f.prio[ev.PID] = ev.Prio
			f.ranAt[ev.Tick] = ev.PID
			running = ev.PID
		case model.EventBlock:
			f.status[ev.PID] = "WAITING"
			f.waiters[ev.Resource] = append(f.waiters[ev.Resource], ev.PID)
		case model.EventWake:
			f.status[ev.PID] = "READY"
			f.waiters[ev.Resource] = removePID(f.waiters[ev.Resource], ev.PID)
		case model.EventAcquire:
			f.owners[ev.Resource] = ev.PID
			f.prio[ev.PID] = ev.Prio
		case model.EventRelease:
			delete(f.owners, ev.Resource)
			f.prio[ev.PID] = ev.Prio
		case model.EventExit:
			f.status[ev.PID] = "EXITED"
		case model.EventIdle:
			f.idleAt[ev.Tick] = true
		}
		f.last = describe(ev)
	}
	return f
}

func removePID(pids []int, pid int) []int {
	out := pids[:0]
	for _, p := range pids {
		if p != pid {
			out = append(out, p)
		}
	}
	return out
}

func describe(ev model.TraceEvent) string {
	switch ev.Kind {
	case model.EventIdle:
		return fmt.Sprintf("tick %d: idle", ev.Tick)
	case model.EventBlock, model.EventWake, model.EventAcquire, model.EventRelease:
		return fmt.Sprintf("tick %d: P%d %s R%d", ev.Tick, ev.PID, strings.ToLower(string(ev.Kind)), ev.Resource)
	default:
		return fmt.Sprintf("tick %d: P%d %s", ev.Tick, ev.PID, strings.ToLower(string(ev.Kind)))
	}
}

// View implements tea.Model.
func (m Model) View() string {
	f := m.replay()

	title := titleStyle.Render(fmt.Sprintf("schedsim play — %s — %s", m.wl.Name, m.scheduler))
	status := fmt.Sprintf("tick %d  (%d/%d events)  %s", f.tick, m.pos, len(m.events), playState(m.playing))

	var pct float64
	if len(m.events) > 0 {
		pct = float64(m.pos) / float64(len(m.events))
	}
	bar := m.progress.ViewAs(pct)

	procs := panelStyle.Render(m.processPanel(f))
	res := panelStyle.Render(m.resourcePanel(f))
	gantt := panelStyle.Render(m.ganttPanel(f))

	body := lipgloss.JoinHorizontal(lipgloss.Top, procs, res)
	help := helpStyle.Render("space play/pause · ←/→ step · 0 start · G end · q quit")
	last := faintStyle.Render(f.last)

	return lipgloss.JoinVertical(lipgloss.Left, title, status, bar, body, gantt, last, help)
}

func playState(playing bool) string {
	if playing {
		return "▶ playing"
	}
	return "⏸ paused"
}

func (m Model) processPanel(f frame) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("PROCESSES") + "\n")

	ids := make([]int, 0, len(m.wl.Processes))
	for _, p := range m.wl.Processes {
		ids = append(ids, p.ID)
	}
	sort.Ints(ids)

	for _, id := range ids {
		st, forked := f.status[id]
		if !forked {
			b.WriteString(faintStyle.Render(fmt.Sprintf("P%-3d not forked", id)) + "\n")
			continue
		}
		line := fmt.Sprintf("P%-3d %-8s prio %d", id, st, f.prio[id])
		switch st {
		case "RUNNING":
			line = runningStyle.Render(line)
		case "WAITING":
			line = waitingStyle.Render(line)
		case "EXITED":
			line = faintStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) resourcePanel(f frame) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("RESOURCES") + "\n")
	if m.wl.Resources == 0 {
		b.WriteString(faintStyle.Render("none"))
		return b.String()
	}
	for rid := 0; rid < m.wl.Resources; rid++ {
		owner := "free"
		if pid, ok := f.owners[rid]; ok {
			owner = fmt.Sprintf("P%d", pid)
		}
		line := fmt.Sprintf("R%-3d owner %-5s", rid, owner)
		if ws := f.waiters[rid]; len(ws) > 0 {
			parts := make([]string, len(ws))
			for i, pid := range ws {
				parts[i] = fmt.Sprintf("P%d", pid)
			}
			line += " waiting " + strings.Join(parts, ",")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) ganttPanel(f frame) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("TIMELINE") + "\n")

	ids := make([]int, 0, len(m.wl.Processes))
	for _, p := range m.wl.Processes {
		ids = append(ids, p.ID)
	}
	sort.Ints(ids)

	width := f.tick
	if m.width > 0 && width > m.width-12 {
		width = m.width - 12
	}
	offset := f.tick - width

	for _, id := range ids {
		b.WriteString(fmt.Sprintf("P%-3d ", id))
		for t := offset; t < f.tick; t++ {
			pid, ran := f.ranAt[t]
			switch {
			case ran && pid == id:
				b.WriteByte('#')
			case f.idleAt[t]:
				b.WriteByte(' ')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
