package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sessionhub/internal/app"
	"github.com/pscheid92/sessionhub/internal/domain"
	apperrors "github.com/pscheid92/sessionhub/internal/platform/errors"
)

var queryMethods = []string{http.MethodGet, http.MethodPost}

const pairingInstructions = "Enter this code in WhatsApp: Settings > Linked Devices > Link a Device"

type countryResponse struct {
	CallingCode string `json:"calling_code"`
	ISO         string `json:"iso"`
	Name        string `json:"name"`
	Flag        string `json:"flag"`
}

type pairResponse struct {
	Success        bool             `json:"success"`
	SessionID      string           `json:"session_id"`
	PairingCode    string           `json:"pairing_code"`
	Country        *countryResponse `json:"country,omitempty"`
	CountryWarning bool             `json:"country_warning"`
	Message        string           `json:"message"`
}

type messageResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.String(http.StatusOK, "Server Running")
}

// numberParam reads ?number= from the query string or a form body.
func numberParam(c echo.Context) (string, error) {
	number := c.QueryParam("number")
	if number == "" {
		number = c.FormValue("number")
	}
	if number == "" {
		return "", apperrors.ValidationError("phone number is required (e.g. ?number=1234567890)").
			WithField("reason", "missing_number")
	}
	return number, nil
}

func (s *Server) handlePair(c echo.Context) error {
	number, err := numberParam(c)
	if err != nil {
		return err
	}

	result, err := s.services.Pairing.Pair(c.Request().Context(), number)
	if err != nil {
		return err
	}

	resp := pairResponse{
		Success:        true,
		SessionID:      result.SessionID,
		PairingCode:    result.Code,
		CountryWarning: result.CountryWarning,
		Message:        pairingInstructions,
	}
	if !result.CountryWarning {
		resp.Country = toCountryResponse(result.Country)
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write pair response: %w", err)
	}
	return nil
}

func toCountryResponse(country app.Country) *countryResponse {
	return &countryResponse{
		CallingCode: country.CallingCode,
		ISO:         country.ISO,
		Name:        country.Name,
		Flag:        country.Flag(),
	}
}

func (s *Server) handleLogout(c echo.Context) error {
	number, err := numberParam(c)
	if err != nil {
		return err
	}

	sessionID, err := s.services.Lifecycle.Logout(c.Request().Context(), number)
	if err != nil {
		return err
	}

	return writeMessage(c, messageResponse{
		Success:   true,
		SessionID: sessionID,
		Message:   fmt.Sprintf("Session %s logged out successfully", sessionID),
	})
}

func (s *Server) handleReconnect(c echo.Context) error {
	number, err := numberParam(c)
	if err != nil {
		return err
	}

	session, err := s.services.Lifecycle.Reconnect(c.Request().Context(), number)
	if err != nil {
		return err
	}

	return writeMessage(c, messageResponse{
		Success:   true,
		SessionID: session.ID,
		Status:    string(session.Status),
		Message:   fmt.Sprintf("Session %s reconnected successfully", session.ID),
	})
}

func writeMessage(c echo.Context, resp messageResponse) error {
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleSessions(c echo.Context) error {
	if err := c.JSON(http.StatusOK, s.services.Reporter.Report()); err != nil {
		return fmt.Errorf("failed to write sessions response: %w", err)
	}
	return nil
}

type clusterResponse struct {
	Total    int                  `json:"total"`
	Healthy  int                  `json:"healthy"`
	Sessions []domain.StatusEntry `json:"sessions"`
}

func (s *Server) handleClusterSessions(c echo.Context) error {
	if s.services.Cluster == nil {
		return apperrors.NotFoundError("cluster view not configured")
	}

	entries, err := s.services.Cluster.List(c.Request().Context())
	if err != nil {
		return apperrors.ExternalError("failed to read cluster status", err).WithField("reason", "mirror_unavailable")
	}

	resp := clusterResponse{Total: len(entries), Sessions: entries}
	if resp.Sessions == nil {
		resp.Sessions = []domain.StatusEntry{}
	}
	for _, e := range entries {
		if e.Healthy {
			resp.Healthy++
		}
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write cluster response: %w", err)
	}
	return nil
}
