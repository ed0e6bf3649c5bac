package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorozov/taskdeck/internal/eventbus"
)

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	bus := eventbus.New()
	store := Open(context.Background(), &memRepo{}, bus)

	r := chi.NewRouter()
	NewServer(store, bus).Routes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url string, body any) viewResponse {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view viewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	return view
}

func TestServerAddAndList(t *testing.T) {
	ts, _ := newTestServer(t)

	view := doJSON(t, http.MethodPost, ts.URL+"/tasks", addRequest{Title: "Buy milk", DueDate: "2026-01-10"})
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "Buy milk", view.Tasks[0].Title)
	assert.Equal(t, 1, view.Tasks[0].Order)
	assert.Equal(t, 1, view.Total)

	resp, err := http.Get(ts.URL + "/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed viewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Equal(t, view, listed)
}

func TestServerInvalidAddIsSilent(t *testing.T) {
	ts, store := newTestServer(t)

	// An over-length title is rejected by the core, but the request still
	// answers 200 with the unchanged view.
	view := doJSON(t, http.MethodPost, ts.URL+"/tasks", addRequest{Title: ""})
	assert.Empty(t, view.Tasks)
	assert.Equal(t, 0, view.Total)
	assert.Equal(t, 0, store.Len())
}

func TestServerMalformedBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/tasks", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "invalid_argument", body["code"])
}

func TestServerLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	view := doJSON(t, http.MethodPost, ts.URL+"/tasks", addRequest{Title: "a"})
	view = doJSON(t, http.MethodPost, ts.URL+"/tasks", addRequest{Title: "b"})
	require.Len(t, view.Tasks, 2)
	idA, idB := view.Tasks[0].ID, view.Tasks[1].ID

	view = doJSON(t, http.MethodPost, fmt.Sprintf("%s/tasks/%s/toggle", ts.URL, idA), toggleRequest{Done: true})
	assert.True(t, view.Tasks[0].Done)

	view = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/tasks/%s", ts.URL, idB), editRequest{Title: "b2", DueDate: "2026-02-02"})
	assert.Equal(t, "b2", view.Tasks[1].Title)
	assert.Equal(t, "2026-02-02", view.Tasks[1].DueDate)

	view = doJSON(t, http.MethodPost, fmt.Sprintf("%s/tasks/%s/move", ts.URL, idB), moveRequest{TargetID: idA})
	assert.Equal(t, []string{idB, idA}, []string{view.Tasks[0].ID, view.Tasks[1].ID})

	view = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/tasks/%s", ts.URL, idA), struct{}{})
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, idB, view.Tasks[0].ID)
	assert.Equal(t, 1, view.Tasks[0].Order)
}

func TestServerViewSelection(t *testing.T) {
	ts, _ := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/tasks", addRequest{Title: "Buy milk", DueDate: "2026-01-10"})
	doJSON(t, http.MethodPost, ts.URL+"/tasks", addRequest{Title: "Buy bread", DueDate: "2026-01-05"})
	view := doJSON(t, http.MethodPost, ts.URL+"/tasks", addRequest{Title: "Call mom"})
	idBread := view.Tasks[1].ID
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/tasks/%s/toggle", ts.URL, idBread), toggleRequest{Done: true})

	view = doJSON(t, http.MethodPut, ts.URL+"/view", viewRequest{Query: "buy", Filter: "todo", Sort: "dateAsc"})
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "Buy milk", view.Tasks[0].Title)
	assert.Equal(t, 3, view.Total, "total ignores the selection")

	// Unknown modes fall back to defaults instead of erroring.
	view = doJSON(t, http.MethodPut, ts.URL+"/view", viewRequest{Filter: "bogus", Sort: "bogus"})
	assert.Len(t, view.Tasks, 3)
}
