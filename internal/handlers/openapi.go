package handlers

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

//go:embed openapi/openapi.yaml
var openAPISpec []byte

// OpenAPIHandler handles OpenAPI specification requests
type OpenAPIHandler struct {
	spec []byte

	once    sync.Once
	jsonDoc []byte
	jsonErr error
}

// NewOpenAPIHandler serves the embedded document.
func NewOpenAPIHandler() *OpenAPIHandler {
	return &OpenAPIHandler{spec: openAPISpec}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/openapi.json", h.ServeJSON).Methods("GET")
}

// ServeYAML serves the OpenAPI spec in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(h.spec)
}

// ServeJSON serves the OpenAPI spec in JSON format
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		var doc map[string]any
		if h.jsonErr = yaml.Unmarshal(h.spec, &doc); h.jsonErr != nil {
			return
		}
		h.jsonDoc, h.jsonErr = json.Marshal(doc)
	})
	if h.jsonErr != nil {
		respondJSONError(w, r, http.StatusInternalServerError, "Failed to parse OpenAPI specification", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}
