package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	// While a list filter is being typed every key belongs to the list.
	if m.activeList().FilterState() == list.Filtering {
		return m.updateActiveList(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.mode == panelFindings {
			m.mode = panelChecks
		} else {
			m.mode = panelFindings
		}
		return m, nil
	case "t":
		m.showTrend = !m.showTrend
		return m, nil
	case "esc":
		if m.checkFilter != "" {
			m.checkFilter = ""
			m.refreshLists()
			return m, nil
		}
	case "enter":
		if m.mode == panelChecks {
			selected, ok := m.checkList.SelectedItem().(item)
			if !ok {
				return m, nil
			}
			m.checkFilter = selected.check
			m.mode = panelFindings
			m.refreshLists()
			m.findingList.Select(0)
			return m, nil
		}
	}

	return m.updateActiveList(msg)
}

func (m model) activeList() list.Model {
	if m.mode == panelChecks {
		return m.checkList
	}
	return m.findingList
}

func (m model) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.mode == panelChecks {
		m.checkList, cmd = m.checkList.Update(msg)
	} else {
		m.findingList, cmd = m.findingList.Update(msg)
	}
	return m, cmd
}
