package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"paperlearn/internal/domain/model"
)

type jobCreateRequest struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type jobView struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Output    json.RawMessage `json:"output,omitempty"`
	LastError string          `json:"last_error,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func toJobView(j *model.Job) jobView {
	return jobView{
		ID:        j.ID,
		Kind:      string(j.Kind),
		Status:    string(j.Status),
		Payload:   j.Payload,
		Output:    j.Output,
		LastError: j.LastError,
		CreatedAt: j.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// jobCreateHandler enqueues and runs a job within the request. The
// response is 200 with the terminal job even when the pipeline failed;
// the failure lives in the job's status and last_error, not in the
// HTTP status.
func (s *Server) jobCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req jobCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Payload) == 0 {
		req.Payload = json.RawMessage(`{}`)
	}

	job, err := s.jobsUC.EnqueueAndRun(r.Context(), model.JobKind(req.Kind), req.Payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobView(job))
}

func (s *Server) jobGetHandler(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobsUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobView(job))
}
