package command

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"

	"github.com/cuemby/rokt/pkg/cryptox"
	"github.com/cuemby/rokt/pkg/envelope"
	"github.com/cuemby/rokt/pkg/storage"
)

func newTestCatalog(t *testing.T) *storage.Catalog {
	t.Helper()
	fs := afero.NewMemMapFs()
	cipher, err := cryptox.New("testpass", "0123456789abcdef")
	if err != nil {
		t.Fatalf("cryptox.New() error: %v", err)
	}
	cat, err := storage.Open(fs, cipher, "/base")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	return cat
}

func jsonOf(t *testing.T, e envelope.Envelope) string {
	t.Helper()
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	return string(b)
}

func TestCreateThenDuplicate(t *testing.T) {
	cat := newTestCatalog(t)

	e := Execute(cat, "CREATE TABLE u;")
	if e.Status != envelope.StatusOK {
		t.Fatalf("CREATE status = %d, want %d (%s)", e.Status, envelope.StatusOK, jsonOf(t, e))
	}

	e = Execute(cat, "CREATE TABLE u;")
	if e.Status != envelope.StatusAlreadyExists {
		t.Fatalf("CREATE duplicate status = %d, want %d", e.Status, envelope.StatusAlreadyExists)
	}
}

func TestAddThenGet(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")

	e := Execute(cat, `ADD {"id":1,"name":"Alice","details":{"age":30,"city":"Paris"}} IN u;`)
	if e.Status != envelope.StatusInserted {
		t.Fatalf("ADD status = %d, want %d (%s)", e.Status, envelope.StatusInserted, jsonOf(t, e))
	}

	e = Execute(cat, "GET name IN u WHERE details.age IS 30;")
	want := `{"status":0,"reason":"OK","datas":{"result":["Alice"]}}`
	if got := jsonOf(t, e); got != want {
		t.Fatalf("GET = %s, want %s", got, want)
	}
}

func TestGetWhereNoMatchReturnsEmptyResult(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"name":"Alice"} IN u;`)

	e := Execute(cat, "GET * IN u WHERE favorite_flavour HAS vanilla;")
	want := `{"status":0,"reason":"OK","datas":{"result":[]}}`
	if got := jsonOf(t, e); got != want {
		t.Fatalf("GET = %s, want %s", got, want)
	}
}

func TestCount(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"id":1,"name":"Alice","details":{"age":30}} IN u;`)
	Execute(cat, `ADD {"id":2,"name":"Bob","details":{"age":40}} IN u;`)

	e := Execute(cat, "COUNT u details.age:30;")
	want := `{"status":0,"reason":"OK","datas":{"count":1}}`
	if got := jsonOf(t, e); got != want {
		t.Fatalf("COUNT = %s, want %s", got, want)
	}
}

func TestChangePhrasing(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"name":"Alice","age":30} IN u;`)

	e := Execute(cat, "CHANGE age = 35 WHERE name IS Alice IN u;")
	if e.Status != envelope.StatusOK || e.Reason != "OK, mis à jour 1 ligne(s)." {
		t.Fatalf("CHANGE envelope = %+v", e)
	}
}

func TestRemovePhrasing(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"name":"Alice"} IN u;`)
	Execute(cat, `ADD {"name":"Bob"} IN u;`)

	e := Execute(cat, "REMOVE Alice IN u;")
	if e.Status != envelope.StatusOK || e.Reason != "OK, supprimé 1 ligne(s)." {
		t.Fatalf("REMOVE envelope = %+v", e)
	}
}

func TestAddUniqueRejectsDuplicate(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"email":"a@example.com"} UNIQUE email IN u;`)

	e := Execute(cat, `ADD {"email":"a@example.com"} UNIQUE email IN u;`)
	if e.Status != envelope.StatusAlreadyExists {
		t.Fatalf("ADD UNIQUE duplicate status = %d, want %d", e.Status, envelope.StatusAlreadyExists)
	}
}

func TestAddUniqueMissingFieldFails(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")

	e := Execute(cat, `ADD {"name":"Alice"} UNIQUE email IN u;`)
	if e.Status != envelope.StatusBadParam {
		t.Fatalf("ADD UNIQUE missing field status = %d, want %d", e.Status, envelope.StatusBadParam)
	}
}

func TestAddLowercaseKeyword(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")

	e := Execute(cat, `add {"name":"Alice"} IN u;`)
	if e.Status != envelope.StatusInserted {
		t.Fatalf("lowercase add status = %d, want %d", e.Status, envelope.StatusInserted)
	}
}

func TestUnrecognizedCommand(t *testing.T) {
	cat := newTestCatalog(t)
	e := Execute(cat, "FROBNICATE u;")
	if e.Status != 423 || e.Reason != "Commande non reconnue" {
		t.Fatalf("unrecognized command envelope = %+v", e)
	}
}

func TestGetUnknownDataset(t *testing.T) {
	cat := newTestCatalog(t)
	e := Execute(cat, "GET * IN ghost;")
	if e.Status != envelope.StatusUnknownDataset {
		t.Fatalf("GET on unknown dataset status = %d, want %d", e.Status, envelope.StatusUnknownDataset)
	}
}

func TestGetGroupBy(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"name":"Alice","team":"red"} IN u;`)
	Execute(cat, `ADD {"name":"Bob","team":"blue"} IN u;`)
	Execute(cat, `ADD {"name":"Carol"} IN u;`)

	e := Execute(cat, "GET * IN u GROUP BY team;")
	if e.Status != envelope.StatusOK {
		t.Fatalf("GET GROUP BY status = %d", e.Status)
	}
	b, _ := json.Marshal(e)
	got := string(b)
	for _, want := range []string{`"red"`, `"blue"`, `"undefined"`} {
		if !containsSub(got, want) {
			t.Fatalf("GET GROUP BY result %s missing bucket %s", got, want)
		}
	}
}

func TestGetOrderByNumericDesc(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"name":"Alice","age":30} IN u;`)
	Execute(cat, `ADD {"name":"Bob","age":40} IN u;`)

	e := Execute(cat, "GET name IN u ORDER BY age DESC;")
	want := `{"status":0,"reason":"OK","datas":{"result":["Bob","Alice"]}}`
	if got := jsonOf(t, e); got != want {
		t.Fatalf("GET ORDER BY DESC = %s, want %s", got, want)
	}
}

func TestGetLimit(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"name":"Alice"} IN u;`)
	Execute(cat, `ADD {"name":"Bob"} IN u;`)
	Execute(cat, `ADD {"name":"Carol"} IN u;`)

	e := Execute(cat, "GET name IN u LIMIT 2;")
	want := `{"status":0,"reason":"OK","datas":{"result":["Alice","Bob"]}}`
	if got := jsonOf(t, e); got != want {
		t.Fatalf("GET LIMIT = %s, want %s", got, want)
	}
}

func TestGetAlias(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"name":"Alice"} IN u;`)

	e := Execute(cat, "GET name AS who IN u;")
	want := `{"status":0,"reason":"OK","datas":{"result":[{"who":"Alice"}]}}`
	if got := jsonOf(t, e); got != want {
		t.Fatalf("GET AS = %s, want %s", got, want)
	}
}

func TestEmptyTruncatesDataset(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, `ADD {"name":"Alice"} IN u;`)

	e := Execute(cat, "EMPTY u;")
	if e.Status != envelope.StatusOK {
		t.Fatalf("EMPTY status = %d", e.Status)
	}

	e = Execute(cat, "GET * IN u;")
	want := `{"status":0,"reason":"OK","datas":[]}`
	if got := jsonOf(t, e); got != want {
		t.Fatalf("GET after EMPTY = %s, want %s", got, want)
	}
}

func TestDeleteThenOperateFails(t *testing.T) {
	cat := newTestCatalog(t)
	Execute(cat, "CREATE TABLE u;")
	Execute(cat, "DELETE u;")

	e := Execute(cat, "GET * IN u;")
	if e.Status != envelope.StatusUnknownDataset {
		t.Fatalf("GET after DELETE status = %d, want %d", e.Status, envelope.StatusUnknownDataset)
	}
}

func containsSub(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestPriorityOrdering(t *testing.T) {
	cases := map[string]int{
		"CREATE TABLE u;": 10,
		"DELETE u;":        10,
		"ADD {} IN u;":     5,
		"add {} IN u;":     5,
		"REMOVE x IN u;":   5,
		"CHANGE a = b IN u;": 5,
		"GET * IN u;":      1,
		"COUNT u;":         1,
		"EMPTY u;":         1,
		"NONSENSE;":        0,
	}
	for line, want := range cases {
		if got := Priority(line); got != want {
			t.Errorf("Priority(%q) = %d, want %d", line, got, want)
		}
	}
}
