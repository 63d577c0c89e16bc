package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/haedeune/fivetodo/internal/remote"
)

// fakeService is an in-memory stand-in for the remote task service, good
// enough for create/patch/delete and both list partitions.
type fakeService struct {
	mu      sync.Mutex
	nextID  int
	order   []string
	records map[string]*remote.TaskRecord

	creates []remote.CreateRequest
	patches []patchCall
	deletes []string

	failCreates bool
	failLists   bool

	// createGate, when set before the server starts, holds every create
	// response until the channel is closed.
	createGate chan struct{}
}

type patchCall struct {
	ID    string
	Patch remote.TaskPatch
}

func newFakeService() *fakeService {
	return &fakeService{records: make(map[string]*remote.TaskRecord)}
}

func (f *fakeService) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && r.URL.Path == "/tasks" && f.createGate != nil {
		<-f.createGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/tasks":
		if f.failCreates {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var req remote.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.creates = append(f.creates, req)
		f.nextID++
		rec := &remote.TaskRecord{
			ID:          fmt.Sprintf("srv-%d", f.nextID),
			Title:       req.Title,
			Description: req.Description,
			Status:      "pending",
			DueDate:     req.DueDate,
		}
		f.records[rec.ID] = rec
		f.order = append(f.order, rec.ID)
		json.NewEncoder(w).Encode(rec)

	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/tasks/"):
		id := strings.TrimPrefix(r.URL.Path, "/tasks/")
		var patch remote.TaskPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.patches = append(f.patches, patchCall{ID: id, Patch: patch})
		rec, ok := f.records[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if patch.Status != nil {
			rec.Status = *patch.Status
		}
		if patch.IsArchived != nil {
			rec.IsArchived = *patch.IsArchived
		}
		if patch.Title != nil {
			rec.Title = *patch.Title
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/tasks/"):
		id := strings.TrimPrefix(r.URL.Path, "/tasks/")
		f.deletes = append(f.deletes, id)
		delete(f.records, id)
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet && r.URL.Path == "/tasks":
		f.list(w, false)

	case r.Method == http.MethodGet && r.URL.Path == "/tasks/archive":
		f.list(w, true)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeService) list(w http.ResponseWriter, archived bool) {
	if f.failLists {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	out := []remote.TaskRecord{}
	for _, id := range f.order {
		rec, ok := f.records[id]
		if ok && rec.IsArchived == archived {
			out = append(out, *rec)
		}
	}
	json.NewEncoder(w).Encode(out)
}

func (f *fakeService) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func (f *fakeService) patchCalls() []patchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]patchCall, len(f.patches))
	copy(out, f.patches)
	return out
}

func (f *fakeService) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deletes))
	copy(out, f.deletes)
	return out
}
