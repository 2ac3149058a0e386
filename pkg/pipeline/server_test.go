package pipeline

import (
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/cuemby/rokt/pkg/cryptox"
	"github.com/cuemby/rokt/pkg/storage"
)

func newTestCatalog(t *testing.T) *storage.Catalog {
	t.Helper()
	cipher, err := cryptox.New("test-passphrase", "0123456789abcdef")
	if err != nil {
		t.Fatalf("cryptox.New: %v", err)
	}
	cat, err := storage.Open(afero.NewMemMapFs(), cipher, "/base")
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	return cat
}

func startTestServer(t *testing.T, cfg Config) (addr string, shutdown func()) {
	t.Helper()
	cat := newTestCatalog(t)
	srv := New(cat, cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ln)
		close(done)
	}()

	return ln.Addr().String(), func() {
		srv.Shutdown()
		_ = ln.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("server did not shut down in time")
		}
	}
}

func sendCommand(t *testing.T, addr, command string) map[string]any {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(command)); err != nil {
		t.Fatalf("write: %v", err)
	}

	var reply map[string]any
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return reply
}

func TestServerCreateAddGetRoundTrip(t *testing.T) {
	addr, shutdown := startTestServer(t, Config{MaxWorkers: 2, MaxQueueSize: 10})
	defer shutdown()

	reply := sendCommand(t, addr, `CREATE TABLE t;`)
	if reply["status"] != float64(0) {
		t.Fatalf("CREATE failed: %+v", reply)
	}

	reply = sendCommand(t, addr, `ADD {"id":1} IN t;`)
	if reply["status"] != float64(2) {
		t.Fatalf("ADD failed: %+v", reply)
	}

	reply = sendCommand(t, addr, `GET * IN t;`)
	if reply["status"] != float64(0) {
		t.Fatalf("GET failed: %+v", reply)
	}
	datas, ok := reply["datas"].([]any)
	if !ok || len(datas) != 1 {
		t.Fatalf("expected singleton array, got %+v", reply["datas"])
	}
}

func TestServerUnrecognizedCommand(t *testing.T) {
	addr, shutdown := startTestServer(t, Config{MaxWorkers: 1, MaxQueueSize: 10})
	defer shutdown()

	reply := sendCommand(t, addr, `BOGUS command here;`)
	if reply["status"] != float64(423) {
		t.Fatalf("expected 423, got %+v", reply)
	}
}

func TestServerAdmitRejectsWhenQueueFull(t *testing.T) {
	cat := newTestCatalog(t)
	srv := New(cat, Config{MaxWorkers: 1, MaxQueueSize: 2})

	// Fill the queue to its configured maximum directly, bypassing the
	// network path, so the admission check below is deterministic.
	srv.queue.Push(&Task{ConnID: "a", Priority: 1})
	srv.queue.Push(&Task{ConnID: "b", Priority: 1})

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		srv.admit(&Task{Conn: serverConn, ConnID: "c", Priority: 1})
		close(done)
	}()

	var reply map[string]any
	if err := json.NewDecoder(clientConn).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	<-done

	if reply["status"] != float64(503) {
		t.Fatalf("expected 503, got %+v", reply)
	}
	if srv.queue.Len() != 2 {
		t.Fatalf("expected queue to stay at max size 2, got %d", srv.queue.Len())
	}
}

func TestServerAdmitSleepsUnderBackpressureThenEnqueues(t *testing.T) {
	cat := newTestCatalog(t)
	srv := New(cat, Config{MaxWorkers: 1, MaxQueueSize: 10})

	// qsize >= maxWorkers*2 (1*2=2) triggers the 100ms backpressure sleep
	// before the task is still ultimately enqueued (queue isn't full).
	srv.queue.Push(&Task{ConnID: "a", Priority: 1})
	srv.queue.Push(&Task{ConnID: "b", Priority: 1})

	start := time.Now()
	srv.admit(&Task{ConnID: "c", Priority: 1})
	elapsed := time.Since(start)

	if elapsed < backpressureSleep {
		t.Fatalf("expected admit to sleep at least %v, took %v", backpressureSleep, elapsed)
	}
	if srv.queue.Len() != 3 {
		t.Fatalf("expected task to be enqueued after backpressure sleep, queue len = %d", srv.queue.Len())
	}
}

func TestServerAdmitConcurrentNeverExceedsMaxQueueSize(t *testing.T) {
	cat := newTestCatalog(t)
	const maxQueue = 20
	srv := New(cat, Config{MaxWorkers: 4, MaxQueueSize: maxQueue})

	const callers = 200
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clientConn, serverConn := net.Pipe()
			defer clientConn.Close()

			readDone := make(chan struct{})
			go func() {
				var reply map[string]any
				_ = json.NewDecoder(clientConn).Decode(&reply)
				close(readDone)
			}()

			srv.admit(&Task{Conn: serverConn, ConnID: "c", Priority: 1})
			// Only rejected tasks get a reply from admit itself; admitted
			// tasks sit in the queue since no worker is running. Don't
			// block the test on conns that were admitted.
			select {
			case <-readDone:
			case <-time.After(100 * time.Millisecond):
			}
		}()
	}
	wg.Wait()

	if got := srv.queue.Len(); got > maxQueue {
		t.Fatalf("queue grew past MaxQueueSize under concurrent admission: got %d, want <= %d", got, maxQueue)
	}
}

func TestServerStatsReflectsQueueAndWorkers(t *testing.T) {
	cat := newTestCatalog(t)
	srv := New(cat, Config{MaxWorkers: 4, MaxQueueSize: 10})

	depth, busy := srv.Stats()
	if depth != 0 || busy != 0 {
		t.Fatalf("expected zeroed stats before Serve, got depth=%d busy=%d", depth, busy)
	}
}
