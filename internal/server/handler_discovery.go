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
		Name:        "Shopfloor API",
		Version:     "v1",
		Description: "Greedy job-shop scheduling with maintenance windows",
		Endpoints: []endpointInfo{
			{"/api/v1/algorithms", []string{"GET"}, "Registered task-ordering algorithms"},
			{"/api/v1/validate/jobs", []string{"POST"}, "Pre-flight validation of a problem document"},
			{"/api/v1/validate/schedule", []string{"POST"}, "Check a schedule for conflicts and sequence violations"},
			{"/api/v1/schedules", []string{"GET", "POST"}, "Schedule a problem document and list stored runs"},
			{"/api/v1/schedules/{id}", []string{"GET", "DELETE"}, "Single stored run"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}

func (s *Server) handleListAlgorithms(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, s.engine.Algorithms())
}
