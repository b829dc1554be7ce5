package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	. "gopkg.in/check.v1"

	"github.com/Justine11289/Precise-HBR/config"
	"github.com/Justine11289/Precise-HBR/tradeoff"
)

type RoutesSuite struct {
	e *echo.Echo
}

var _ = Suite(&RoutesSuite{})

func (s *RoutesSuite) SetUpSuite(c *C) {
	model := &tradeoff.Model{
		BleedingEvents: tradeoff.PredictorGroup{Predictors: []tradeoff.Predictor{
			{Factor: tradeoff.FactorOACDischarge, HazardRatio: 1.9, Description: "Oral anticoagulation at discharge"},
		}},
		ThromboticEvents: tradeoff.PredictorGroup{Predictors: []tradeoff.Predictor{
			{Factor: tradeoff.FactorDiabetes, HazardRatio: 1.5, Description: "Diabetes mellitus"},
		}},
	}
	ref := &config.Reference{
		LabExtraction: map[string][]string{"HEMOGLOBIN": {"718-7"}},
		Tradeoff: config.TradeoffConfig{
			DefaultBleedingRate:   2.5,
			DefaultThromboticRate: 2.5,
		},
	}
	calculator := tradeoff.NewCalculator(model, ref, zerolog.Nop())
	svc := NewService(nil, calculator, zerolog.Nop())

	s.e = echo.New()
	RegisterRoutes(s.e, svc, ref, "http://localhost:9000/breakdowns", zerolog.Nop())
}

func (s *RoutesSuite) TestRecalculateTradeoff(c *C) {
	body := `{"factors":{"oac_discharge":true},"baselineBleedingRate":2.5,"baselineThromboticRate":2.5}`
	req := httptest.NewRequest(http.MethodPost, "/tradeoff/recalculate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	s.e.ServeHTTP(rec, req)
	c.Assert(rec.Code, Equals, http.StatusOK)

	result := tradeoff.Result{}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &result), IsNil)
	c.Assert(result.BleedingFactors, DeepEquals, []string{"Oral anticoagulation at discharge (HR: 1.9)"})
	c.Assert(result.ThromboticFactors, HasLen, 0)
	c.Assert(result.BleedingRisk > 2.5, Equals, true)
	c.Assert(result.ThromboticRisk, Equals, 2.5)
}

func (s *RoutesSuite) TestRecalculateTradeoffBadRequest(c *C) {
	req := httptest.NewRequest(http.MethodPost, "/tradeoff/recalculate", strings.NewReader("not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	s.e.ServeHTTP(rec, req)
	c.Assert(rec.Code, Equals, http.StatusBadRequest)
}

func (s *RoutesSuite) TestCalculateRejectsInvalidBundle(c *C) {
	req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader("{broken"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	s.e.ServeHTTP(rec, req)
	c.Assert(rec.Code, Equals, http.StatusBadRequest)
}
