package handler

import (
	"net/http"

	"github.com/fixora/taskhub/infrastructure/http/response"
	"github.com/fixora/taskhub/infrastructure/service/logger"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DriveAuthHandler walks an operator through the consent screen once to
// obtain the refresh token the storage client runs on.
type DriveAuthHandler struct {
	oauth  *oauth2.Config
	logger logger.Logger
}

func NewDriveAuthHandler(oauthCfg *oauth2.Config, log logger.Logger) *DriveAuthHandler {
	return &DriveAuthHandler{oauth: oauthCfg, logger: log}
}

func (h *DriveAuthHandler) configured() bool {
	return h.oauth != nil && h.oauth.ClientID != "" && h.oauth.ClientSecret != ""
}

func (h *DriveAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	if !h.configured() {
		response.InternalServerError(w, "Google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.")
		return
	}
	authURL := h.oauth.AuthCodeURL(uuid.NewString(), oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	response.Success(w, http.StatusOK, "Visit the provided URL to authorize Google Drive access", map[string]string{
		"auth_url": authURL,
	})
}

func (h *DriveAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.configured() {
		response.InternalServerError(w, "Google OAuth credentials not configured")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		response.BadRequest(w, "Authorization code not provided")
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error(r.Context(), "Failed to exchange authorization code", err, nil)
		response.InternalServerError(w, "Failed to exchange authorization code")
		return
	}
	if token.RefreshToken == "" {
		response.BadRequest(w, "No refresh token returned; revoke access and authorize again")
		return
	}

	// operator copies this into GOOGLE_REFRESH_TOKEN
	h.logger.Warn(r.Context(), "Google Drive authorized", map[string]interface{}{
		"refresh_token": token.RefreshToken,
	})
	response.Success(w, http.StatusOK, "Authorization successful. Copy GOOGLE_REFRESH_TOKEN from the server log and restart.", nil)
}
