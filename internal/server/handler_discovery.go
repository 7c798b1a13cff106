package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "createtaxdb API",
		Version:     "v1",
		Description: "Parameter manifest and run history for " + s.manifest.Name,
		Endpoints: []endpointInfo{
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
			{"/api/v1/schema", []string{"GET"}, "Parameter manifest; ?format=yaml for YAML"},
			{"/api/v1/command", []string{"POST"}, "Preview the runner command for a volume and parameters"},
			{"/api/v1/runs", []string{"GET"}, "Run history; supports limit, offset and state"},
			{"/api/v1/runs/{id}", []string{"GET"}, "Single run record"},
		},
	})
}
