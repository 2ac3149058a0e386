package predicate

import (
	"testing"

	"github.com/cuemby/rokt/pkg/record"
)

func objRow(fields map[string]record.Record) record.Record {
	obj := record.NewObject()
	for k, v := range fields {
		obj.Set(k, v)
	}
	return record.FromObject(obj)
}

func TestEvalDottedPath(t *testing.T) {
	details := record.NewObject()
	details.Set("age", record.Number(30))
	details.Set("city", record.String("Paris"))
	row := objRow(map[string]record.Record{
		"name":    record.String("Alice"),
		"details": record.FromObject(details),
	})

	cond := Condition{Field: "details.age", Op: NormalizeOp("IS"), Value: "30"}
	ok, err := cond.Eval(row)
	if err != nil {
		t.Fatalf("Eval() error: %v", err)
	}
	if !ok {
		t.Fatal("Eval() = false, want true for details.age IS 30")
	}
}

func TestEvalMissingSegmentIsFalse(t *testing.T) {
	row := objRow(map[string]record.Record{"name": record.String("Alice")})
	cond := Condition{Field: "details.age", Op: record.OpEq, Value: "30"}
	ok, err := cond.Eval(row)
	if err != nil {
		t.Fatalf("Eval() error: %v", err)
	}
	if ok {
		t.Fatal("Eval() = true, want false for missing path segment")
	}
}

func TestEvalHas(t *testing.T) {
	row := objRow(map[string]record.Record{
		"favorite_flavour": record.Array([]record.Record{
			record.String("chocolate"), record.String("vanilla"),
		}),
	})
	cond := Condition{Field: "favorite_flavour", Op: record.OpHas, Value: "vanilla"}
	ok, err := cond.Eval(row)
	if err != nil {
		t.Fatalf("Eval() error: %v", err)
	}
	if !ok {
		t.Fatal("Eval() = false, want true for HAS vanilla")
	}
}

func TestEvalAllLeftFold(t *testing.T) {
	row := objRow(map[string]record.Record{
		"a": record.Number(1),
		"b": record.Number(2),
		"c": record.Number(3),
	})

	// a == 1 AND b == 99 OR c == 3  =>  ((true AND false) OR true) == true
	conds := []Condition{
		{Field: "a", Op: record.OpEq, Value: "1"},
		{Field: "b", Op: record.OpEq, Value: "99", Logic: LogicAnd},
		{Field: "c", Op: record.OpEq, Value: "3", Logic: LogicOr},
	}
	ok, err := EvalAll(conds, row)
	if err != nil {
		t.Fatalf("EvalAll() error: %v", err)
	}
	if !ok {
		t.Fatal("EvalAll() = false, want true")
	}
}

func TestEvalAllEmptyIsTrue(t *testing.T) {
	row := objRow(nil)
	ok, err := EvalAll(nil, row)
	if err != nil {
		t.Fatalf("EvalAll() error: %v", err)
	}
	if !ok {
		t.Fatal("EvalAll(nil) = false, want true")
	}
}

func TestEvalHasOnScalarErrors(t *testing.T) {
	row := objRow(map[string]record.Record{"name": record.String("Alice")})
	cond := Condition{Field: "name", Op: record.OpHas, Value: "x"}
	if _, err := cond.Eval(row); err == nil {
		t.Fatal("Eval() expected error for HAS on scalar")
	}
}
