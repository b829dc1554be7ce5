package server

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/Justine11289/Precise-HBR/assessments"
	"github.com/Justine11289/Precise-HBR/plugin"
	"github.com/Justine11289/Precise-HBR/tradeoff"
)

const breakdownCollection = "breakdowns"

// pruneDelay debounces per-patient cleanup of superseded breakdowns.
const pruneDelay = 2 * time.Second

// Service coordinates plugins, breakdown persistence, and the tradeoff
// calculator behind the HTTP handlers.
type Service struct {
	db       *mgo.Database
	plugins  []plugin.RiskServicePlugin
	tradeoff *tradeoff.Calculator
	delayer  *FunctionDelayer
	log      zerolog.Logger
}

// NewService creates a Service over the given database.
func NewService(db *mgo.Database, calculator *tradeoff.Calculator, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		tradeoff: calculator,
		delayer:  NewFunctionDelayer(pruneDelay),
		log:      log,
	}
}

// RegisterPlugin registers a risk service plugin with the service.
func (s *Service) RegisterPlugin(p plugin.RiskServicePlugin) {
	s.plugins = append(s.plugins, p)
	s.log.Info().Str("plugin", p.Config().Name).Msg("registered risk plugin")
}

// CalculationResponse is the payload returned for one plugin's calculation.
type CalculationResponse struct {
	Method         string                        `json:"method"`
	Score          *int                          `json:"score"`
	Category       *assessments.RiskCategoryInfo `json:"category,omitempty"`
	MissingFields  []string                      `json:"missingFields,omitempty"`
	Breakdown      *plugin.Breakdown             `json:"breakdown"`
	RiskAssessment interface{}                   `json:"riskAssessment,omitempty"`
}

// Calculate runs every registered plugin over the clinical data, persists the
// resulting breakdowns, and schedules pruning of superseded ones.  A plugin
// reporting NotApplicable is skipped, not an error.
func (s *Service) Calculate(data *plugin.ClinicalData, demographics plugin.Demographics, basisURL string) ([]CalculationResponse, error) {
	var responses []CalculationResponse
	for _, p := range s.plugins {
		result, err := p.Calculate(data, demographics)
		if err != nil {
			if _, ok := err.(plugin.NotApplicableError); ok {
				s.log.Debug().Str("plugin", p.Config().Name).Err(err).Msg("plugin not applicable")
				continue
			}
			return nil, fmt.Errorf("calculating %s: %w", p.Config().Name, err)
		}

		if err := s.saveBreakdown(result.Breakdown); err != nil {
			return nil, fmt.Errorf("saving breakdown: %w", err)
		}

		response := CalculationResponse{
			Method:        p.Config().Name,
			Score:         result.Score,
			MissingFields: result.MissingFields,
			Breakdown:     result.Breakdown,
		}
		if result.Score != nil {
			category := assessments.Categorize(*result.Score)
			response.Category = &category
		}
		if data.Patient != nil && data.Patient.Id != "" {
			response.RiskAssessment = result.ToRiskAssessment(data.Patient.Id, basisURL, p.Config())
		}
		responses = append(responses, response)
	}
	return responses, nil
}

// GetBreakdown fetches a stored breakdown by its hex id.
func (s *Service) GetBreakdown(id string) (*plugin.Breakdown, error) {
	if !bson.IsObjectIdHex(id) {
		return nil, mgo.ErrNotFound
	}
	breakdown := &plugin.Breakdown{}
	err := s.db.C(breakdownCollection).FindId(bson.ObjectIdHex(id)).One(breakdown)
	if err != nil {
		return nil, err
	}
	return breakdown, nil
}

// Tradeoff exposes the tradeoff calculator to the handlers.
func (s *Service) Tradeoff() *tradeoff.Calculator {
	return s.tradeoff
}

func (s *Service) saveBreakdown(breakdown *plugin.Breakdown) error {
	if breakdown == nil {
		return nil
	}
	if err := s.db.C(breakdownCollection).Insert(breakdown); err != nil {
		return err
	}
	if breakdown.Patient != "" {
		patient := breakdown.Patient
		keep := breakdown.Id
		s.delayer.Delay(patient, func() {
			s.pruneBreakdowns(patient, keep)
		})
	}
	return nil
}

// pruneBreakdowns removes a patient's breakdowns other than the most recently
// kept one.  Failures only log; stale documents are harmless.
func (s *Service) pruneBreakdowns(patient string, keep bson.ObjectId) {
	info, err := s.db.C(breakdownCollection).RemoveAll(bson.M{
		"patient": patient,
		"_id":     bson.M{"$ne": keep},
	})
	if err != nil {
		s.log.Warn().Err(err).Str("patient", patient).Msg("pruning breakdowns failed")
		return
	}
	if info.Removed > 0 {
		s.log.Debug().Str("patient", patient).Int("removed", info.Removed).Msg("pruned superseded breakdowns")
	}
}
