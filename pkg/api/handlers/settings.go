package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	apierrors "github.com/voicelane/voicelane/pkg/api/errors"
	"github.com/voicelane/voicelane/pkg/credentials"
)

// SettingsHandler exposes the per-user credential settings endpoints
type SettingsHandler struct {
	credentials *credentials.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(credentialService *credentials.Service) *SettingsHandler {
	return &SettingsHandler{credentials: credentialService}
}

// SaveOpenAIKey stores a user's OpenAI API key
// PUT /api/v1/settings/:userId/openai-key
func (h *SettingsHandler) SaveOpenAIKey(c echo.Context) error {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "invalid request body")
	}

	userID := c.Param("userId")
	if err := h.credentials.SaveOpenAIKey(c.Request().Context(), userID, req.APIKey); err != nil {
		return apierrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

// GetOpenAIKey reports whether a key is configured, returning only a masked
// form. The full key never leaves the server.
// GET /api/v1/settings/:userId/openai-key
func (h *SettingsHandler) GetOpenAIKey(c echo.Context) error {
	key, err := h.credentials.OpenAIKey(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return apierrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"configured": true,
		"masked_key": maskKey(key),
	})
}

// maskKey keeps the prefix and last four characters of a secret
func maskKey(key string) string {
	if len(key) <= 7 {
		return strings.Repeat("*", len(key))
	}
	return key[:3] + strings.Repeat("*", len(key)-7) + key[len(key)-4:]
}
