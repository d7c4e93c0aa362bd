package testutil

import (
	"context"
	"sync"

	"github.com/mcoot/quizgame/internal/ui"
)

// FakePrompter answers confirms from a queue and records every dialog
type FakePrompter struct {
	mu       sync.Mutex
	answers  []bool
	Confirms []string
	Alerts   []string
}

// Ensure FakePrompter implements ui.Prompter
var _ ui.Prompter = (*FakePrompter)(nil)

// NewFakePrompter creates a prompter that answers true once the queue is empty
func NewFakePrompter(answers ...bool) *FakePrompter {
	return &FakePrompter{answers: answers}
}

// QueueConfirm queues answers for upcoming confirms
func (p *FakePrompter) QueueConfirm(answers ...bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answers = append(p.answers, answers...)
}

func (p *FakePrompter) Confirm(ctx context.Context, message string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Confirms = append(p.Confirms, message)
	if len(p.answers) == 0 {
		return true, nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *FakePrompter) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Alerts = append(p.Alerts, message)
}

// ConfirmCount returns the number of confirms shown
func (p *FakePrompter) ConfirmCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Confirms)
}

// AlertMessages returns a copy of the alerts shown
func (p *FakePrompter) AlertMessages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Alerts...)
}
