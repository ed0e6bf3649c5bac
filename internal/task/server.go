package task

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kmorozov/taskdeck/internal/eventbus"
	"github.com/kmorozov/taskdeck/pkg/cerr"
)

// Server exposes the store to the view layer over JSON HTTP. Mutations follow
// the core's fire-and-forget contract: they always answer 200 with the
// refreshed projection, whether or not the operation was a no-op. Only a
// request body that fails to decode is an error.
type Server struct {
	store *Store
	bus   *eventbus.Bus
}

func NewServer(store *Store, bus *eventbus.Bus) *Server {
	return &Server{store: store, bus: bus}
}

// Routes mounts the task endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/tasks", s.handleList)
	r.Post("/tasks", s.handleAdd)
	r.Patch("/tasks/{id}", s.handleEdit)
	r.Post("/tasks/{id}/toggle", s.handleToggle)
	r.Delete("/tasks/{id}", s.handleDelete)
	r.Post("/tasks/{id}/move", s.handleMove)
	r.Put("/view", s.handleSetView)
	r.Get("/events", s.handleEvents)
}

// viewResponse is what the view layer renders from: the projected sequence
// plus the unfiltered total, which drives the empty-state hint.
type viewResponse struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request) {
	cerr.WriteJSON(r.Context(), w, viewResponse{
		Tasks: s.store.Projection(),
		Total: s.store.Len(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, r)
}

type addRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"dueDate"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if !decode(w, r, &req) {
		return
	}
	s.store.Add(r.Context(), req.Title, req.DueDate)
	s.writeView(w, r)
}

type editRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"dueDate"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !decode(w, r, &req) {
		return
	}
	s.store.Edit(r.Context(), chi.URLParam(r, "id"), req.Title, req.DueDate)
	s.writeView(w, r)
}

type toggleRequest struct {
	Done bool `json:"done"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decode(w, r, &req) {
		return
	}
	s.store.ToggleDone(r.Context(), chi.URLParam(r, "id"), req.Done)
	s.writeView(w, r)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(r.Context(), chi.URLParam(r, "id"))
	s.writeView(w, r)
}

type moveRequest struct {
	TargetID string `json:"targetId"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	s.store.MoveBefore(r.Context(), chi.URLParam(r, "id"), req.TargetID)
	s.writeView(w, r)
}

type viewRequest struct {
	Query  string `json:"query"`
	Filter string `json:"filter"`
	Sort   string `json:"sort"`
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !decode(w, r, &req) {
		return
	}
	s.store.SetQuery(req.Query)
	s.store.SetFilter(ParseFilterMode(req.Filter))
	s.store.SetSort(ParseSortMode(req.Sort))
	s.writeView(w, r)
}

// handleEvents streams change events as server-sent events until the client
// disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		cerr.WriteJSONError(r.Context(), w, cerr.NewError(cerr.Unimplemented, "streaming unsupported", nil))
		return
	}

	id, ch := s.bus.Subscribe(16)
	defer s.bus.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		cerr.WriteJSONError(r.Context(), w, cerr.NewError(cerr.InvalidArgument, "invalid request body", err))
		return false
	}
	return true
}
