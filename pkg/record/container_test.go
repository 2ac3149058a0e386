package record

import "testing"

func mustParse(t *testing.T, s string) Record {
	t.Helper()
	r, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", s, err)
	}
	return r
}

func TestContainerWhere(t *testing.T) {
	arr := mustParse(t, `[{"name":"Alice","age":30},{"name":"Bob","age":40}]`)
	rows, _ := arr.AsArray()
	c := NewContainer(rows)

	filtered, err := c.Where("name", OpEq, "Alice")
	if err != nil {
		t.Fatalf("Where() error: %v", err)
	}
	if filtered.Len() != 1 {
		t.Fatalf("Where() len = %d, want 1", filtered.Len())
	}
}

func TestContainerHeadAndLast(t *testing.T) {
	arr := mustParse(t, `[1,2,3,4,5]`)
	rows, _ := arr.AsArray()
	c := NewContainer(rows)

	if c.Head(2).Len() != 2 {
		t.Fatalf("Head(2) len = %d, want 2", c.Head(2).Len())
	}
	if c.Head(100).Len() != 5 {
		t.Fatalf("Head(100) len = %d, want 5 (clamped)", c.Head(100).Len())
	}

	last, err := c.Last()
	if err != nil {
		t.Fatalf("Last() error: %v", err)
	}
	if n, _ := last.AsNumber(); n != 5 {
		t.Fatalf("Last() = %v, want 5", last)
	}
}

func TestContainerGetProjection(t *testing.T) {
	arr := mustParse(t, `[{"name":"Alice"},{"age":30},{"name":"Bob"}]`)
	rows, _ := arr.AsArray()
	c := NewContainer(rows)

	names := c.Get("name")
	if len(names) != 2 {
		t.Fatalf("Get(name) len = %d, want 2 (skip rows without key)", len(names))
	}
}

func TestContainerPartition(t *testing.T) {
	arr := mustParse(t, `[{"name":"Alice","age":30},{"name":"Bob","age":40},{"name":"Alice","age":50}]`)
	rows, _ := arr.AsArray()
	c := NewContainer(rows)

	matched, rest, err := c.Partition("name", OpEq, "Alice")
	if err != nil {
		t.Fatalf("Partition() error: %v", err)
	}
	if matched.Len() != 2 {
		t.Fatalf("matched.Len() = %d, want 2", matched.Len())
	}
	if rest.Len() != 1 {
		t.Fatalf("rest.Len() = %d, want 1", rest.Len())
	}
	name, _ := rest.Raw()[0].Resolve("name")
	if text := name.Text(); text != "Bob" {
		t.Fatalf("rest row = %q, want Bob", text)
	}
}

func TestContainerAtOutOfRange(t *testing.T) {
	c := NewContainer(nil)
	if _, err := c.At(0); err == nil {
		t.Fatal("At(0) on empty container expected error")
	}
}
