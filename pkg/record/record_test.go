package record

import "testing"

func TestParseAndMarshalRoundTrip(t *testing.T) {
	src := `[{"id":1,"name":"Alice","details":{"age":30,"city":"Paris"}}]`
	r, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	out, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if string(out) != src {
		t.Fatalf("MarshalJSON() = %s, want %s", out, src)
	}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	src := `{"z":1,"a":2,"m":3}`
	r, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	obj, ok := r.AsObject()
	if !ok {
		t.Fatal("AsObject() = false")
	}
	got := obj.Keys()
	want := []string{"z", "a", "m"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveDottedPath(t *testing.T) {
	r, err := Parse([]byte(`{"a":{"b":{"c":42}}}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	v, ok := r.Resolve("a.b.c")
	if !ok {
		t.Fatal("Resolve() ok = false")
	}
	n, ok := v.AsNumber()
	if !ok || n != 42 {
		t.Fatalf("Resolve() = %v, want 42", v)
	}

	if _, ok := r.Resolve("a.x.c"); ok {
		t.Fatal("Resolve() expected absent for missing middle segment")
	}
}

func TestSetField(t *testing.T) {
	r, err := Parse([]byte(`{"name":"Alice","age":30}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	updated := r.Set("age", String("40"))
	v, ok := updated.Resolve("age")
	if !ok {
		t.Fatal("Resolve() ok = false after Set")
	}
	s, ok := v.AsString()
	if !ok || s != "40" {
		t.Fatalf("Resolve(age) = %v, want string 40", v)
	}

	// original is untouched (Set returns a new value)
	orig, _ := r.Resolve("age")
	if n, ok := orig.AsNumber(); !ok || n != 30 {
		t.Fatalf("original record mutated: age = %v", orig)
	}
}

func TestTextCanonicalRepresentation(t *testing.T) {
	tests := []struct {
		r    Record
		want string
	}{
		{Number(30), "30"},
		{String("Paris"), "Paris"},
		{Bool(true), "true"},
		{Null(), ""},
	}
	for _, tt := range tests {
		if got := tt.r.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}
