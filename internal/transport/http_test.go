package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/transport"
)

// fakeRelay mimics the dev relay's HTTP surface in-process.
type fakeRelay struct {
	mu      sync.Mutex
	bundles map[string]domain.PreKeyBundle
	queues  map[string][]json.RawMessage
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{
		bundles: make(map[string]domain.PreKeyBundle),
		queues:  make(map[string][]json.RawMessage),
	}
}

func (f *fakeRelay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	parts := strings.Split(path, "/")
	receipt := domain.Receipt{Timestamp: time.Now().Unix(), DeliveryMethod: "relay"}

	switch {
	case r.Method == http.MethodPost && parts[0] == "bundle":
		var b domain.PreKeyBundle
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.bundles[b.PeerID] = b
		_ = json.NewEncoder(w).Encode(receipt)

	case r.Method == http.MethodGet && parts[0] == "bundle":
		b, ok := f.bundles[parts[1]]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(b)

	case r.Method == http.MethodPost && parts[0] == "msg" && len(parts) == 3 && parts[2] == "ack":
		var body struct {
			Count int `json:"count"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		q := f.queues[parts[1]]
		if body.Count > len(q) {
			body.Count = len(q)
		}
		f.queues[parts[1]] = q[body.Count:]
		_ = json.NewEncoder(w).Encode(receipt)

	case r.Method == http.MethodPost && parts[0] == "msg":
		var payload json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.queues[parts[1]] = append(f.queues[parts[1]], payload)
		_ = json.NewEncoder(w).Encode(receipt)

	case r.Method == http.MethodGet && parts[0] == "msg":
		q := f.queues[parts[1]]
		limit := len(q)
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n < limit {
			limit = n
		}
		_ = json.NewEncoder(w).Encode(q[:limit])

	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func TestBundleRegisterAndFetch(t *testing.T) {
	srv := httptest.NewServer(newFakeRelay())
	defer srv.Close()
	client := transport.NewHTTPRelay(srv.URL, srv.Client())

	bundle := domain.PreKeyBundle{
		PeerID:         "bob",
		SignedPreKeyID: "spk-1",
	}
	if err := client.RegisterPreKeyBundle(context.Background(), bundle); err != nil {
		t.Fatalf("RegisterPreKeyBundle: %v", err)
	}

	got, err := client.FetchPreKeyBundle(context.Background(), "bob")
	if err != nil {
		t.Fatalf("FetchPreKeyBundle: %v", err)
	}
	if got.PeerID != "bob" || got.SignedPreKeyID != "spk-1" {
		t.Fatalf("bundle mismatch: %+v", got)
	}
}

func TestFetchMissingBundleFails(t *testing.T) {
	srv := httptest.NewServer(newFakeRelay())
	defer srv.Close()
	client := transport.NewHTTPRelay(srv.URL, srv.Client())

	if _, err := client.FetchPreKeyBundle(context.Background(), "nobody"); err == nil {
		t.Fatal("want error for missing bundle")
	}
}

func TestSendFetchAckCycle(t *testing.T) {
	srv := httptest.NewServer(newFakeRelay())
	defer srv.Close()
	client := transport.NewHTTPRelay(srv.URL, srv.Client())

	env := domain.Envelope{From: "alice", To: "bob", Timestamp: 42}
	payload, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	receipt, err := client.SendDirect(context.Background(), "bob", payload)
	if err != nil {
		t.Fatalf("SendDirect: %v", err)
	}
	if receipt.DeliveryMethod != "relay" {
		t.Fatalf("delivery method %q", receipt.DeliveryMethod)
	}

	envs, err := client.FetchMessages(context.Background(), "bob", 0)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if len(envs) != 1 || envs[0].From != "alice" {
		t.Fatalf("fetched %+v", envs)
	}

	// Unacknowledged messages stay queued.
	envs, err = client.FetchMessages(context.Background(), "bob", 0)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if len(envs) != 1 {
		t.Fatalf("queue drained before ack: %d", len(envs))
	}

	if err := client.AckMessages(context.Background(), "bob", 1); err != nil {
		t.Fatalf("AckMessages: %v", err)
	}
	envs, err = client.FetchMessages(context.Background(), "bob", 0)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if len(envs) != 0 {
		t.Fatalf("queue not drained after ack: %d", len(envs))
	}
}

func TestCancelledContextAborts(t *testing.T) {
	srv := httptest.NewServer(newFakeRelay())
	defer srv.Close()
	client := transport.NewHTTPRelay(srv.URL, srv.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.SendDirect(ctx, "bob", []byte(`{}`)); err == nil {
		t.Fatal("want error from cancelled context")
	}
}
