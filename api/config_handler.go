package api

import (
	"net/http"

	"github.com/seenimoa/chartfolio/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config   config.Config          `json:"config"`
	Settings []config.SettingStatus `json:"settings"`
}

// handleGetConfig returns the running configuration with credentials masked,
// and where each key setting came from. Configuration is read-only at runtime.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:   s.cfg.Redacted(),
			Settings: config.CheckSettings(s.cfg),
		},
	})
}
