package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/attackmap/internal/matcher"
	"github.com/yildizm/attackmap/internal/runner"
)

// Message types shared across UI models. Every message carries the task
// it belongs to so the model can drop messages from superseded tasks.
type matchProgressMsg struct {
	task    *runner.Task
	percent int
}

type matchCompleteMsg struct {
	task   *runner.Task
	result *matcher.Result
}

type matchErrorMsg struct {
	task *runner.Task
	err  error
}

// waitForProgress creates a tea command that blocks on the task's
// progress channel and converts each percentage into a message. When
// the channel closes the task is finished and the final result or
// error is reported instead.
func waitForProgress(task *runner.Task) tea.Cmd {
	return func() tea.Msg {
		percent, ok := <-task.Progress()
		if !ok {
			return finishMessage(task)
		}
		return matchProgressMsg{task: task, percent: percent}
	}
}

func finishMessage(task *runner.Task) tea.Msg {
	<-task.Done()

	if err := task.Err(); err != nil {
		return matchErrorMsg{task: task, err: err}
	}
	return matchCompleteMsg{task: task, result: task.Result()}
}
