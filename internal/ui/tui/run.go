// Package tui renders analysis results as an interactive terminal program
// that refreshes on every watch-mode update.
package tui

import (
	"classlint/internal/core/ports"
	"classlint/internal/data/history"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	// Initial is shown before the first update arrives.
	Initial *ports.RunResult
	Trend   *history.TrendReport
	// Subscribe registers for later results; nil makes the view static.
	Subscribe func(func(ports.WatchUpdate))
	// Start, when set, runs in the background once the subscription is in
	// place. Its error is shown in the footer.
	Start func() error
}

func Run(opts Options) error {
	m := initialModel(opts.Trend)
	if opts.Initial != nil {
		next, _ := m.Update(updateMsg{result: *opts.Initial})
		m = next.(model)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())

	if opts.Subscribe != nil {
		opts.Subscribe(func(update ports.WatchUpdate) {
			p.Send(updateMsg{
				result:  update.Result,
				changed: update.Changed,
				err:     update.Err,
			})
		})
	}

	if opts.Start != nil {
		go func() {
			if err := opts.Start(); err != nil {
				p.Send(updateMsg{err: err})
			}
		}()
	}

	_, err := p.Run()
	return err
}
