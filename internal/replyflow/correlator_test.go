package replyflow

import "testing"

func TestCorrelatorBeginPop(t *testing.T) {
	c := NewCorrelator()

	if _, ok := c.Pop(1); ok {
		t.Fatal("Pop on empty correlator reported a target")
	}

	c.Begin(1, 100)
	if id, ok := c.Pending(1); !ok || id != 100 {
		t.Fatalf("Pending = (%d, %v), want (100, true)", id, ok)
	}

	id, ok := c.Pop(1)
	if !ok || id != 100 {
		t.Fatalf("Pop = (%d, %v), want (100, true)", id, ok)
	}
	if _, ok := c.Pop(1); ok {
		t.Error("target not consumed by Pop")
	}
}

func TestCorrelatorOverwrite(t *testing.T) {
	c := NewCorrelator()
	c.Begin(1, 100)
	c.Begin(1, 200)

	id, ok := c.Pop(1)
	if !ok || id != 200 {
		t.Fatalf("Pop after overwrite = (%d, %v), want (200, true)", id, ok)
	}
	if _, ok := c.Pop(1); ok {
		t.Error("overwritten target still pending")
	}
}

func TestCorrelatorPerAdminIsolation(t *testing.T) {
	c := NewCorrelator()
	c.Begin(1, 100)
	c.Begin(2, 200)

	if id, _ := c.Pop(2); id != 200 {
		t.Errorf("admin 2 popped %d, want 200", id)
	}
	if id, ok := c.Pending(1); !ok || id != 100 {
		t.Errorf("admin 1 pending = (%d, %v), want (100, true)", id, ok)
	}
}
