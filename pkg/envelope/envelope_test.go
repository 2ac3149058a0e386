package envelope

import (
	"encoding/json"
	"testing"

	"github.com/cuemby/rokt/pkg/record"
)

func TestOKOmitsDatasWhenAbsent(t *testing.T) {
	e := Err(StatusOK)
	if e.Datas != nil {
		t.Fatalf("Datas = %v, want nil", e.Datas)
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if got := string(b); got != `{"status":0,"reason":"OK"}` {
		t.Fatalf("Marshal() = %s, want no datas key", got)
	}
}

func TestOKCarriesDatas(t *testing.T) {
	e := OK(record.Number(3))
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if got := string(b); got != `{"status":0,"reason":"OK","datas":3}` {
		t.Fatalf("Marshal() = %s", got)
	}
}

func TestBuildDropsDatasOnFailure(t *testing.T) {
	d := record.String("leaked")
	e := Build(StatusError, "", &d)
	if e.Datas != nil {
		t.Fatal("Build() kept datas on a non-OK status")
	}
}

func TestBuildNegativeStatusNormalised(t *testing.T) {
	e := Build(-7, "", nil)
	if e.Status != StatusError {
		t.Fatalf("Status = %d, want %d", e.Status, StatusError)
	}
}

func TestBuildUnknownStatusGetsUnknownErrorReason(t *testing.T) {
	e := Build(9999, "", nil)
	if e.Reason != unknownErrorReason {
		t.Fatalf("Reason = %q, want %q", e.Reason, unknownErrorReason)
	}
}

func TestOKWithReasonKeepsCustomPhrasing(t *testing.T) {
	e := OKWithReason("OK, mis à jour 1 ligne(s).")
	if e.Status != StatusOK || e.Reason != "OK, mis à jour 1 ligne(s)." {
		t.Fatalf("unexpected envelope: %+v", e)
	}
}

func TestErrReasonKeepsCustomPhrasing(t *testing.T) {
	e := ErrReason(StatusCannotCreateFile, "Commande non reconnue")
	if e.Reason != "Commande non reconnue" {
		t.Fatalf("Reason = %q, want custom phrasing", e.Reason)
	}
}
