package api

import "net/http"

func (s *server) handleHome(w http.ResponseWriter, _ *http.Request) {
	body, err := s.svc.RenderHome()
	if err != nil {
		s.logger.Errorw("render home failed", "err", err)
		writeRenderError(w, err, s.debug)
		return
	}
	writeHTML(w, http.StatusOK, body, s.logger)
}
