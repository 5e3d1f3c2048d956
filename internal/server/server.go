// Package server exposes a read-only HTTP API over the canonical
// facility store. Updates still flow through the CLI; the API only
// serves what the last reconciliation wrote.
package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zimhealth/registry-cli/internal/model"
	"github.com/zimhealth/registry-cli/internal/normalize"
)

// Server serves a fixed snapshot of the facility directory.
type Server struct {
	facilities []model.Facility
	byID       map[string]int
}

func New(facilities []model.Facility) *Server {
	byID := make(map[string]int, len(facilities))
	for i, f := range facilities {
		if f.ID != "" {
			if _, dup := byID[f.ID]; !dup {
				byID[f.ID] = i
			}
		}
	}
	return &Server{facilities: facilities, byID: byID}
}

// Handler builds the chi router with CORS enabled for browser clients.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/facilities", s.handleList)
	r.Get("/api/facilities/{id}", s.handleGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"facilities": len(s.facilities),
	})
}

// handleList filters the directory by province, facility type, tier, and
// offered service, mirroring the frontend filter controls.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	province := normalize.Text(q.Get("province"))
	facilityType := normalize.Text(q.Get("type"))
	tier := normalize.Text(q.Get("tier"))
	service := normalize.Text(q.Get("service"))

	var out []model.Facility
	for _, f := range s.facilities {
		if province != "" && normalize.Text(f.Province) != province {
			continue
		}
		if facilityType != "" && normalize.Text(f.FacilityType) != facilityType {
			continue
		}
		if tier != "" && normalize.Text(f.Tier) != tier {
			continue
		}
		if service != "" && !offersService(&f, service) {
			continue
		}
		out = append(out, f)
	}

	switch q.Get("sort") {
	case "province":
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Province != out[j].Province {
				return out[i].Province < out[j].Province
			}
			return out[i].Name < out[j].Name
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(out),
		"facilities": out,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	i, ok := s.byID[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "facility not found"})
		return
	}
	writeJSON(w, http.StatusOK, s.facilities[i])
}

func offersService(f *model.Facility, want string) bool {
	for _, svc := range f.Services {
		if strings.Contains(normalize.Text(svc), want) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
