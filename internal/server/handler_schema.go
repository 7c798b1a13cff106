package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/me/createtaxdb/internal/schema"
	"github.com/me/createtaxdb/pkg/model"
)

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "json":
		respondOK(w, reqID, s.manifest)
	case "yaml", "yml":
		out, err := s.manifest.Encode("yaml")
		if err != nil {
			respondInternal(w, reqID, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(out)
	default:
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "format must be json or yaml",
		})
	}
}

type commandRequest struct {
	Volume string         `json:"volume"`
	Params map[string]any `json:"params"`
}

type commandResponse struct {
	Argv    []string `json:"argv"`
	Env     []string `json:"env"`
	WorkDir string   `json:"work_dir"`
	Command string   `json:"command"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.planner == nil {
		respondUnavailable(w, reqID, "command preview")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			&model.APIError{Code: model.ErrValidation, Message: "invalid JSON: " + err.Error()})
		return
	}
	if req.Volume == "" {
		respondError(w, reqID, http.StatusBadRequest,
			&model.APIError{Code: model.ErrValidation, Message: "volume is required"})
		return
	}

	values, err := schema.Resolve(s.params, req.Params)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			&model.APIError{Code: model.ErrValidation, Message: err.Error()})
		return
	}

	inv, err := s.planner.Plan(req.Volume, values)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}

	env := make([]string, 0, len(inv.Env))
	for k, v := range inv.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	respondOK(w, reqID, commandResponse{
		Argv:    inv.Argv,
		Env:     env,
		WorkDir: inv.Dir,
		Command: inv.String(),
	})
}
