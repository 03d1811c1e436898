package server

import "net/http"

type schedulerInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// handleListSchedulers returns the catalog of scheduler variants.
func (s *Server) handleListSchedulers(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var infos []schedulerInfo
	for _, key := range s.registry.Keys() {
		sched, err := s.registry.Get(key)
		if err != nil {
			continue
		}
		infos = append(infos, schedulerInfo{Key: key, Name: sched.Name()})
	}
	respondOK(w, reqID, infos)
}
