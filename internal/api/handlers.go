package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/tasks"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDataTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.DataTypes())
}

func (s *Server) handleWorkflowNames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.WorkflowNames())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	p := search.ParamsFromQuery(r.URL.Query())
	base := *r.URL
	base.RawQuery = ""
	if base.Host == "" {
		base.Host = r.Host
		base.Scheme = "http"
		if r.TLS != nil {
			base.Scheme = "https"
		}
	}

	listing, err := s.backend.List(r.Context(), p, &base)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := s.backend.Get(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := s.backend.Update(r.Context(), id, fields)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.backend.Delete(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	row, err := s.backend.Row(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleUI returns the detail-view schema. Any list parameters in the
// query string select the listing used for previous/next navigation.
func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var listing *search.Params
	if len(r.URL.Query()) > 0 {
		p := search.ParamsFromQuery(r.URL.Query())
		listing = &p
	}
	_, schema, err := s.backend.View(r.Context(), id, listing)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := s.backend.Apply(r.Context(), id, r.PathValue("verb"), args)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": out})
}

func (s *Server) handleBulkAction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs  []int64        `json:"ids"`
		Args map[string]any `json:"args,omitempty"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	taskID, err := s.backend.BulkApply(r.Context(), requestUser(r), body.IDs, r.PathValue("verb"), body.Args)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := tasks.ListOptions{
		TaskQueue:    q.Get("queue"),
		StatusFilter: q.Get("status"),
	}
	if n, err := strconv.Atoi(q.Get("size")); err == nil {
		opts.PageSize = n
	}
	list, err := s.backend.Tasks(r.Context(), opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.backend.Task(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "object id must be an integer")
		return 0, false
	}
	return id, true
}

// decodeArgs reads an optional JSON object body.
func decodeArgs(r *http.Request) (map[string]any, error) {
	var args map[string]any
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&args)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return args, err
}

// handleVerify checks the index of each ?data_type= against the store.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	reports, err := s.backend.Verify(r.Context(), r.URL.Query()["data_type"])
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
