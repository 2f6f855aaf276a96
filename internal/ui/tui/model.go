package tui

import (
	"classlint/internal/core/ports"
	"classlint/internal/data/history"
	"classlint/internal/engine/checks"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	principleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	patternStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	check       string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelFindings panelMode = iota
	panelChecks
)

type checkCount struct {
	name     string
	category checks.Category
	count    int
}

type model struct {
	findingList list.Model
	checkList   list.Model
	mode        panelMode

	findings []checks.Finding
	counts   []checkCount
	// checkFilter limits the findings panel to one check; empty shows all.
	checkFilter string

	trendReport *history.TrendReport
	showTrend   bool

	classes    int
	failures   int
	changed    []string
	lastErr    error
	lastUpdate time.Time
}

// updateMsg carries one finished analysis into the program.
type updateMsg struct {
	result  ports.RunResult
	changed []string
	err     error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 8
		if height < 5 {
			height = 5
		}
		m.findingList.SetSize(width, height)
		m.checkList.SetSize(width, height)
	case updateMsg:
		m.lastUpdate = time.Now()
		m.changed = msg.changed
		m.lastErr = msg.err
		if msg.err != nil {
			// Keep showing the previous findings.
			return m, nil
		}
		m.findings = msg.result.Findings
		m.classes = msg.result.Classes
		m.failures = len(msg.result.LoadFailures)
		m.counts = countByCheck(m.findings)
		if m.checkFilter != "" && !hasCheck(m.counts, m.checkFilter) {
			m.checkFilter = ""
		}
		m.refreshLists()
	}

	var cmd tea.Cmd
	if m.mode == panelFindings {
		m.findingList, cmd = m.findingList.Update(msg)
	} else {
		m.checkList, cmd = m.checkList.Update(msg)
	}
	return m, cmd
}

func (m *model) refreshLists() {
	items := make([]list.Item, 0, len(m.findings))
	for _, f := range m.findings {
		if m.checkFilter != "" && f.CheckName != m.checkFilter {
			continue
		}
		items = append(items, item{
			title: f.CheckName,
			desc:  fmt.Sprintf("%s: %s", f.Location, f.Message),
			check: f.CheckName,
		})
	}
	m.findingList.SetItems(items)
	m.findingList.Title = "Findings"
	if m.checkFilter != "" {
		m.findingList.Title = "Findings: " + m.checkFilter
	}

	checkItems := make([]list.Item, 0, len(m.counts))
	for _, c := range m.counts {
		checkItems = append(checkItems, item{
			title: c.name,
			desc:  fmt.Sprintf("%s | %d findings", c.category, c.count),
			check: c.name,
		})
	}
	m.checkList.SetItems(checkItems)
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d classes | %d load failures",
		m.lastUpdate.Format("15:04:05"), m.classes, m.failures))

	var summary string
	if len(m.findings) == 0 {
		summary = successStyle.Render("No findings")
	} else {
		principles := 0
		for _, f := range m.findings {
			if f.Category == checks.Principle {
				principles++
			}
		}
		summary = fmt.Sprintf("%s | %s",
			principleStyle.Render(fmt.Sprintf("%d principle", principles)),
			patternStyle.Render(fmt.Sprintf("%d pattern/style", len(m.findings)-principles)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Class Analysis Monitor"), status, summary)
	help := renderHelp(m)

	body := m.findingList.View()
	if m.mode == panelChecks {
		body = renderChecksPanel(m)
	}
	if m.showTrend {
		body += "\n\n" + renderTrendOverlay(m.trendReport)
	}
	if footer := renderFooter(m); footer != "" {
		body += "\n\n" + footer
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}

func initialModel(trendReport *history.TrendReport) model {
	findingList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	findingList.Title = "Findings"
	findingList.SetShowStatusBar(false)
	findingList.SetFilteringEnabled(true)

	checkList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	checkList.Title = "Checks"
	checkList.SetShowStatusBar(false)
	checkList.SetFilteringEnabled(true)

	return model{
		findingList: findingList,
		checkList:   checkList,
		mode:        panelFindings,
		trendReport: trendReport,
		lastUpdate:  time.Now(),
	}
}

func countByCheck(findings []checks.Finding) []checkCount {
	index := make(map[string]int)
	var out []checkCount
	for _, f := range findings {
		i, ok := index[f.CheckName]
		if !ok {
			i = len(out)
			index[f.CheckName] = i
			out = append(out, checkCount{name: f.CheckName, category: f.Category})
		}
		out[i].count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func hasCheck(counts []checkCount, name string) bool {
	for _, c := range counts {
		if c.name == name {
			return true
		}
	}
	return false
}
