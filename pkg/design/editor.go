package design

import (
	"context"
	"fmt"
	"sync"
)

// Editor serializes access to a Tree. The tree lives inside a single goroutine
// and callers submit commands that run one at a time, in arrival order.
type Editor struct {
	cmds chan command
	done chan struct{}
	stop sync.Once
}

type command struct {
	fn    func(*Tree) error
	reply chan error
}

// NewEditor starts an editor owning t. The caller must not use t directly
// afterwards.
func NewEditor(t *Tree) *Editor {
	e := &Editor{
		cmds: make(chan command),
		done: make(chan struct{}),
	}
	go e.loop(t)
	return e
}

func (e *Editor) loop(t *Tree) {
	for {
		select {
		case c := <-e.cmds:
			c.reply <- run(t, c.fn)
		case <-e.done:
			return
		}
	}
}

func run(t *Tree, fn func(*Tree) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("editor command panicked: %v", r)
		}
	}()
	return fn(t)
}

// Do runs fn against the tree and returns its error. If ctx ends before the
// command is accepted, fn never runs.
func (e *Editor) Do(ctx context.Context, fn func(*Tree) error) error {
	reply := make(chan error, 1)
	select {
	case e.cmds <- command{fn: fn, reply: reply}:
	case <-e.done:
		return ErrEditorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View runs a read-only fn against the tree.
func (e *Editor) View(ctx context.Context, fn func(*Tree)) error {
	return e.Do(ctx, func(t *Tree) error {
		fn(t)
		return nil
	})
}

// Close stops the editor. Pending and later calls return ErrEditorClosed.
func (e *Editor) Close() {
	e.stop.Do(func() { close(e.done) })
}
