package routing

import (
	"encoding/json"
	"errors"
	"net/http"

	domainhttp "github.com/damianoneill/go-routable/pkg/domain/http"
	domainlog "github.com/damianoneill/go-routable/pkg/domain/logging"
	"github.com/damianoneill/go-routable/pkg/domain/route"
)

func (s *Service) mountHandlers(router domainhttp.Router) {
	router.Get("/resolve", s.handleResolveQuery)
	router.Post("/resolve", s.handleResolveBody)
	router.Delete("/resolve/cache", s.handleClearCache)
	router.Put("/resolve/globals", s.handleGlobals)
	router.Get("/lookup", s.handleLookup)
	router.Get("/routes", s.handleRoutes)
}

func (s *Service) handleResolveQuery(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	s.resolve(w, r, raw, nil)
}

func (s *Service) handleResolveBody(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	s.resolve(w, r, req.URL, req.Extras)
}

func (s *Service) resolve(w http.ResponseWriter, r *http.Request, raw string, extras Extras) {
	result, err := s.Resolver().Resolve(r.Context(), raw, extras, r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if result.Target == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleLookup(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	m, err := s.Resolver().Lookup(raw)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Service) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	t := s.state.Load()

	configured := make(map[string]RouteConfig, len(t.config.Routes))
	for _, rc := range t.config.Routes {
		configured[rc.Template] = rc
	}

	templates := t.resolver.Templates()
	resp := routesResponse{
		Routes:       make([]RouteConfig, 0, len(templates)),
		GlobalParams: t.resolver.GlobalParams(),
		CacheSize:    t.resolver.CacheLen(),
	}
	for _, tmpl := range templates {
		rc, ok := configured[tmpl]
		if !ok {
			rc = RouteConfig{Template: tmpl}
		}
		resp.Routes = append(resp.Routes, rc)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleClearCache(w http.ResponseWriter, _ *http.Request) {
	r := s.Resolver()
	size := r.CacheLen()
	r.ClearCache()
	s.logger.InfoWith("Cleared route cache", domainlog.Fields{"entries": size})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGlobals(w http.ResponseWriter, r *http.Request) {
	var params map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res := s.Resolver()
	for k, v := range params {
		res.GlobalParam(k, v)
	}
	s.logger.InfoWith("Updated global params", domainlog.Fields{"count": len(params)})
	writeJSON(w, http.StatusOK, res.GlobalParams())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, route.ErrRouteNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
