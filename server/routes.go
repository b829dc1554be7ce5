package server

import (
	"encoding/json"
	"net/http"

	"github.com/intervention-engine/fhir/models"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gopkg.in/mgo.v2"

	"github.com/Justine11289/Precise-HBR/config"
	"github.com/Justine11289/Precise-HBR/plugin"
)

// RegisterRoutes sets up the HTTP routes.  basisURL is the externally
// reachable prefix for stored breakdowns, referenced from generated risk
// assessments.
func RegisterRoutes(e *echo.Echo, svc *Service, ref *config.Reference, basisURL string, log zerolog.Logger) {
	h := &handlers{svc: svc, labCodes: ref.LabExtraction, basisURL: basisURL, log: log}
	e.POST("/calculate", h.calculate)
	e.GET("/breakdowns/:id", h.getBreakdown)
	e.POST("/tradeoff", h.tradeoff)
	e.POST("/tradeoff/recalculate", h.recalculateTradeoff)
}

type handlers struct {
	svc      *Service
	labCodes map[string][]string
	basisURL string
	log      zerolog.Logger
}

// calculate scores a fully materialized FHIR bundle.  The service never
// fetches; whatever is absent from the bundle is absent from the calculation.
func (h *handlers) calculate(c echo.Context) error {
	data, demographics, err := h.decodeBundle(c)
	if err != nil {
		return err
	}
	responses, err := h.svc.Calculate(data, demographics, h.basisURL)
	if err != nil {
		h.log.Error().Err(err).Msg("calculation failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "calculation failed")
	}
	return c.JSON(http.StatusOK, responses)
}

func (h *handlers) getBreakdown(c echo.Context) error {
	breakdown, err := h.svc.GetBreakdown(c.Param("id"))
	if err == mgo.ErrNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "no breakdown with that id")
	}
	if err != nil {
		h.log.Error().Err(err).Msg("breakdown lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "breakdown lookup failed")
	}
	return c.JSON(http.StatusOK, breakdown)
}

func (h *handlers) tradeoff(c echo.Context) error {
	data, demographics, err := h.decodeBundle(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.Tradeoff().Calculate(data, demographics))
}

type recalculateRequest struct {
	Factors                map[string]bool `json:"factors"`
	BaselineBleedingRate   float64         `json:"baselineBleedingRate"`
	BaselineThromboticRate float64         `json:"baselineThromboticRate"`
}

// recalculateTradeoff re-evaluates the hazard model over a caller-adjusted
// factor set, so a reviewing clinician can toggle factors without resupplying
// clinical data.
func (h *handlers) recalculateTradeoff(c echo.Context) error {
	req := recalculateRequest{}
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recalculation request")
	}
	result := h.svc.Tradeoff().CalculateInteractive(req.Factors, req.BaselineBleedingRate, req.BaselineThromboticRate)
	return c.JSON(http.StatusOK, result)
}

func (h *handlers) decodeBundle(c echo.Context) (*plugin.ClinicalData, plugin.Demographics, error) {
	bundle := &models.Bundle{}
	if err := json.NewDecoder(c.Request().Body).Decode(bundle); err != nil {
		return nil, plugin.Demographics{}, echo.NewHTTPError(http.StatusBadRequest, "invalid FHIR bundle")
	}
	data := plugin.BundleToClinicalData(bundle, h.labCodes)
	demographics := plugin.DemographicsFromPatient(data.Patient)
	return data, demographics, nil
}
