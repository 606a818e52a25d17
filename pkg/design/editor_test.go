package design

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestEditorSerializesCommands(t *testing.T) {
	e := NewEditor(New())
	defer e.Close()

	ctx := context.Background()
	var root string
	if err := e.View(ctx, func(tr *Tree) { root = tr.RootID() }); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := e.Do(ctx, func(tr *Tree) error {
				_, err := tr.Add(root, NewWidget(BlockData{}))
				return err
			})
			if err != nil {
				t.Errorf("Do() error: %v", err)
			}
		}()
	}
	wg.Wait()

	var n int
	var sum int
	if err := e.View(ctx, func(tr *Tree) {
		node, _ := tr.Node(root)
		n = len(node.Children)
		sum = percentageSum(node.Constraints)
	}); err != nil {
		t.Fatal(err)
	}
	if n != 16 || sum != 100 {
		t.Errorf("children = %d, sum = %d; want 16, 100", n, sum)
	}
}

func TestEditorReturnsCommandError(t *testing.T) {
	e := NewEditor(New())
	defer e.Close()
	err := e.Do(context.Background(), func(tr *Tree) error { return tr.Delete(tr.RootID()) })
	if !errors.Is(err, ErrRootImmutable) {
		t.Errorf("Do() error = %v, want ErrRootImmutable", err)
	}
}

func TestEditorRecoversPanic(t *testing.T) {
	e := NewEditor(New())
	defer e.Close()
	err := e.Do(context.Background(), func(*Tree) error { panic("boom") })
	if err == nil {
		t.Fatal("Do() error = nil after a panicking command")
	}
	if err := e.View(context.Background(), func(*Tree) {}); err != nil {
		t.Errorf("editor unusable after panic: %v", err)
	}
}

func TestEditorClose(t *testing.T) {
	e := NewEditor(New())
	e.Close()
	e.Close()
	if err := e.Do(context.Background(), func(*Tree) error { return nil }); !errors.Is(err, ErrEditorClosed) {
		t.Errorf("Do() after Close error = %v, want ErrEditorClosed", err)
	}
}

func TestEditorCanceledContext(t *testing.T) {
	e := NewEditor(New())
	defer e.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The command may or may not be accepted; either way Do must not block.
	err := e.Do(ctx, func(*Tree) error { return nil })
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}
