package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/scope"
)

// result is the outcome of a task started under a scope. Tab results
// carry the tab id; screen results leave it empty.
type result[T any] struct {
	tab string
	tok scope.Token
	val T
	err error
}

func (r result[T]) target() string { return r.tab }

// run starts fn under key, cancelling what ran there before. The task
// token is taken now, so a newer run supersedes this one immediately.
func run[T any](sc *scope.Scope, tab, key string, fn func(ctx context.Context) (T, error)) tea.Cmd {
	ctx, tok := sc.Start(key)
	return func() tea.Msg {
		v, err := fn(ctx)
		return result[T]{tab: tab, tok: tok, val: v, err: err}
	}
}

func isAuthErr(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}

func requireLogin() tea.Msg { return authRequiredMsg{} }

func fetchUser(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		u, err := client.Me(context.Background())
		return userLoadedMsg{user: u, err: err}
	}
}

// listen forwards signals from sub to the program until it is
// unsubscribed. stream tells apart several subscriptions of one tab.
func listen(sub *events.Subscription[events.Signal], tab, stream string, send func(tea.Msg)) {
	if send == nil {
		return
	}
	go func() {
		for sig := range sub.C() {
			send(signalMsg{tab: tab, stream: stream, signal: sig})
		}
	}()
}

// subscriptions groups the hub handles a tab owns.
type subscriptions []*events.Subscription[events.Signal]

func (s *subscriptions) add(hub *events.Hub, tab, stream string, send func(tea.Msg), topics ...events.Topic) {
	if hub == nil {
		return
	}
	sub := hub.Subscribe(topics...)
	*s = append(*s, sub)
	listen(sub, tab, stream, send)
}

func (s *subscriptions) release() {
	for _, sub := range *s {
		sub.Unsubscribe()
	}
	*s = nil
}

func publish(hub *events.Hub, topic events.Topic) {
	if hub != nil {
		hub.Publish(topic)
	}
}
