// Package engine contains the triage orchestrator: the state machine
// that drives a request from raw text to a final triage result, plus
// the confidence calibrator and explanation generator it finishes with.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/respicare/triage-engine/internal/cache"
	"github.com/respicare/triage-engine/internal/catalog"
	"github.com/respicare/triage-engine/internal/classifier"
	"github.com/respicare/triage-engine/internal/domain"
	"github.com/respicare/triage-engine/internal/pattern"
	"github.com/respicare/triage-engine/internal/validate"
)

// Orchestrator implements domain.Triager. It owns the stage ordering
// and the safety invariants: a critical emergency terminates before any
// scoring, and no downstream stage can lower a declared urgency floor.
type Orchestrator struct {
	extractor  domain.Extractor
	emergency  domain.EmergencyChecker
	catalogs   *catalog.Store
	ensemble   *classifier.Ensemble
	fallback   *pattern.Matcher
	validator  *validate.Validator
	calibrator *Calibrator

	cache   *cache.ResultCache
	history domain.HistoryStore

	cfg domain.EngineConfig
	log *logrus.Logger
}

// Options carries the optional collaborators.
type Options struct {
	Cache   *cache.ResultCache
	History domain.HistoryStore
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(
	extractor domain.Extractor,
	emergency domain.EmergencyChecker,
	catalogs *catalog.Store,
	ensemble *classifier.Ensemble,
	cfg domain.EngineConfig,
	logger *logrus.Logger,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		extractor:  extractor,
		emergency:  emergency,
		catalogs:   catalogs,
		ensemble:   ensemble,
		fallback:   pattern.NewMatcher(cfg.MinPatternMatches, cfg.GenericConfidence),
		validator:  validate.NewValidator(cfg.RequiredPenalty, cfg.AgePenalty),
		calibrator: NewCalibrator(cfg.LowEvidenceFactor, cfg.HighEvidenceFactor, cfg.LowEvidenceCount, cfg.HighEvidenceCount),
		cache:      opts.Cache,
		history:    opts.History,
		cfg:        cfg,
		log:        logger,
	}
}

// Triage runs the full pipeline for one request. It never panics: an
// unexpected fault anywhere inside is caught at this boundary and
// surfaced as a generic processing-error result, distinct from any
// diagnosis, so a fault can never fabricate a reassuring read.
func (o *Orchestrator) Triage(ctx context.Context, text string, age int) (result *domain.TriageResult, err error) {
	started := time.Now()
	requestID := uuid.New().String()

	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}

	if o.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RequestTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			o.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"panic":      r,
			}).Error("Triage pipeline panicked")
			result = o.processingErrorResult(requestID, started)
			err = nil
		}
	}()

	result = o.triage(ctx, requestID, text, age)

	result.RequestID = requestID
	result.ProcessingTime = time.Since(started)
	result.Timestamp = time.Now().UTC()

	o.log.WithFields(result.LogFields()).Info("Triage completed")
	o.record(text, result)
	return result, nil
}

func (o *Orchestrator) triage(ctx context.Context, requestID, text string, age int) *domain.TriageResult {
	extraction := o.extractor.Extract(text)

	// Emergency pass runs before anything else and is never served from
	// cache: a critical verdict must always come from the live rules.
	if verdict, ok := o.emergency.Check(text, extraction); ok {
		return o.emergencyResult(verdict, extraction)
	}

	if extraction.Count() == 0 {
		return o.needsInfoResult(extraction)
	}

	// The cache stores scored hypotheses keyed by symptom set and age.
	// The urgency floor is text-derived, so it is applied after cache
	// retrieval: two texts with the same symptom set may imply
	// different floors.
	cacheKey := cache.Key(extraction.SymptomNames(), age)

	// The cache clones on both Put and Get, so the floor mutation below
	// can never reach the shared cached entry.
	var result *domain.TriageResult
	if o.cache != nil {
		result, _ = o.cache.Get(ctx, cacheKey)
	}
	if result == nil {
		result = o.score(ctx, extraction, age)
		if o.cache != nil {
			o.cache.Put(ctx, cacheKey, result)
		}
	}

	// High/medium emergency keywords floor the urgency; they never
	// lower it and never terminate.
	if floor, keyword, ok := o.emergency.Floor(text, extraction); ok {
		if !result.Urgency.AtLeast(floor) {
			result.Warnings = append(result.Warnings,
				"Urgencia elevada por indicador detectado: "+keyword)
		}
		result.Urgency = result.Urgency.Max(floor)
	}

	result.Recommendation = recommendationFor(result.Urgency)
	return result
}

// score produces the disease hypothesis: classifier ensemble when any
// adapter is up, pattern fallback otherwise, then validation and
// calibration.
func (o *Orchestrator) score(ctx context.Context, extraction *domain.ExtractionResult, age int) *domain.TriageResult {
	snapshot, err := o.catalogs.Current()
	if err != nil {
		// No catalog snapshot was ever published. The orchestrator
		// cannot score; degrade to the generic hypothesis.
		o.log.WithError(err).Error("Catalog unavailable during scoring")
		return o.genericResult(extraction)
	}

	modelAge := age
	if modelAge <= 0 {
		modelAge = o.cfg.DefaultAge
	}
	validationAge := age
	if age <= 0 {
		validationAge = -1
	}

	patternResult := o.fallback.Match(snapshot, extraction)

	resolution, err := o.ensemble.Resolve(ctx, extraction, modelAge)
	if err != nil {
		if !errors.Is(err, domain.ErrClassifierUnavailable) {
			o.log.WithError(err).Warn("Ensemble resolution failed, using pattern fallback")
		}
		return o.fromPattern(patternResult, extraction, validationAge)
	}

	cond, err := snapshot.Get(resolution.Winner.ConditionID)
	if err != nil {
		// The frozen model predicts a condition this catalog snapshot
		// does not carry. Trust the catalog, not the artifact.
		o.log.WithFields(logrus.Fields{
			"condition_id": resolution.Winner.ConditionID,
			"model":        resolution.ModelUsed,
		}).Warn("Model predicted unknown condition, using pattern fallback")
		return o.fromPattern(patternResult, extraction, validationAge)
	}

	outcome := o.validator.Validate(cond, extraction, validationAge, resolution.Winner.Probability)
	confidence := o.calibrator.Calibrate(outcome.Confidence, extraction.Count())

	var attributions []domain.Attribution
	for _, score := range resolution.Scores {
		if len(score.Attributions) > 0 {
			attributions = score.Attributions
			break
		}
	}

	return &domain.TriageResult{
		ConditionID:   cond.ID,
		ConditionName: cond.Name,
		Category:      cond.Category,
		Confidence:    confidence,
		Urgency:       cond.Urgency,
		Severity:      cond.Severity,
		Validation:    outcome.Status,
		Warnings:      outcome.Warnings,
		Explanation:   buildExplanation(attributions, patternResult.MatchedSymptoms, outcome.Warnings, o.cfg.ExplanationTopN),
		Alternatives:  alternatives(resolution, patternResult),
		Symptoms:      extraction.SymptomNames(),
		ModelUsed:     resolution.ModelUsed,
	}
}

// fromPattern finishes the pipeline from a pattern fallback result.
func (o *Orchestrator) fromPattern(patternResult *pattern.Result, extraction *domain.ExtractionResult, validationAge int) *domain.TriageResult {
	result := &domain.TriageResult{
		ConditionID:   patternResult.Prediction.ConditionID,
		ConditionName: patternResult.Prediction.ConditionName,
		Category:      patternResult.Category,
		Urgency:       patternResult.Urgency,
		Severity:      patternResult.Severity,
		Validation:    domain.ValidationPassed,
		Alternatives:  patternResult.Alternatives,
		Symptoms:      extraction.SymptomNames(),
		ModelUsed:     "pattern_match",
	}

	confidence := patternResult.Prediction.Probability
	if !patternResult.Generic {
		snapshot, err := o.catalogs.Current()
		if err == nil {
			if cond, condErr := snapshot.Get(patternResult.Prediction.ConditionID); condErr == nil {
				outcome := o.validator.Validate(cond, extraction, validationAge, confidence)
				confidence = outcome.Confidence
				result.Validation = outcome.Status
				result.Warnings = outcome.Warnings
			}
		}
	}

	result.Confidence = o.calibrator.Calibrate(confidence, extraction.Count())
	result.Explanation = buildExplanation(nil, patternResult.MatchedSymptoms, result.Warnings, o.cfg.ExplanationTopN)
	return result
}

// emergencyResult is the terminal result for a critical-tier match:
// confidence fixed at 1.0, urgency critical, no validation or
// calibration may touch it.
func (o *Orchestrator) emergencyResult(verdict domain.EmergencyVerdict, extraction *domain.ExtractionResult) *domain.TriageResult {
	return &domain.TriageResult{
		ConditionName:  domain.ConditionEmergency,
		Confidence:     1.0,
		Urgency:        domain.UrgencyCritical,
		Severity:       domain.SeverityExtreme,
		IsEmergency:    true,
		EmergencyMatch: verdict.Matched,
		Action:         verdict.Action,
		Validation:     domain.ValidationPassed,
		Warnings:       []string{verdict.Warning},
		Symptoms:       extraction.SymptomNames(),
		Recommendation: recommendationFor(domain.UrgencyCritical),
		ModelUsed:      "emergency_rules",
	}
}

// needsInfoResult degrades an empty extraction to a follow-up prompt:
// not an error, and never a guessed diagnosis.
func (o *Orchestrator) needsInfoResult(extraction *domain.ExtractionResult) *domain.TriageResult {
	return &domain.TriageResult{
		ConditionName:  domain.ConditionNeedsInfo,
		Confidence:     0,
		Urgency:        domain.UrgencyLow,
		Severity:       domain.SeverityMild,
		Validation:     domain.ValidationPassed,
		NeedsFollowUp:  true,
		Symptoms:       extraction.SymptomNames(),
		Recommendation: "Describe tus síntomas con más detalle para poder orientarte mejor.",
		ModelUsed:      "none",
	}
}

// genericResult is the unspecified-infection hypothesis used when
// scoring is impossible.
func (o *Orchestrator) genericResult(extraction *domain.ExtractionResult) *domain.TriageResult {
	return &domain.TriageResult{
		ConditionName:  domain.ConditionUnclassified,
		Confidence:     o.cfg.GenericConfidence,
		Urgency:        domain.UrgencyLow,
		Severity:       domain.SeverityMild,
		Validation:     domain.ValidationPassed,
		Symptoms:       extraction.SymptomNames(),
		Recommendation: recommendationFor(domain.UrgencyLow),
		ModelUsed:      "pattern_match",
	}
}

// processingErrorResult is the boundary result for an internal fault.
// Deliberately carries no condition, urgency medium, confidence zero:
// a fault must never read as either "fine" or a specific disease.
func (o *Orchestrator) processingErrorResult(requestID string, started time.Time) *domain.TriageResult {
	return &domain.TriageResult{
		RequestID:      requestID,
		ConditionName:  "Error de procesamiento",
		Confidence:     0,
		Urgency:        domain.UrgencyMedium,
		Severity:       domain.SeverityModerate,
		Validation:     domain.ValidationWarning,
		Warnings:       []string{"El análisis no pudo completarse; consulta a un médico si los síntomas persisten."},
		NeedsFollowUp:  true,
		ProcessingTime: time.Since(started),
		Timestamp:      time.Now().UTC(),
		ModelUsed:      "none",
	}
}

// alternatives merges the ensemble's vote candidates with the pattern
// fallback's top conditions, capped at three, winner first.
func alternatives(resolution *classifier.Resolution, patternResult *pattern.Result) []domain.RankedPrediction {
	seen := map[int]bool{}
	var merged []domain.RankedPrediction
	for _, p := range resolution.Candidates {
		if !seen[p.ConditionID] {
			seen[p.ConditionID] = true
			merged = append(merged, p)
		}
	}
	for _, p := range patternResult.Alternatives {
		if !seen[p.ConditionID] {
			seen[p.ConditionID] = true
			merged = append(merged, p)
		}
	}
	if len(merged) > 3 {
		merged = merged[:3]
	}
	return merged
}

// record persists the audit record, best effort. The input text is
// hashed, never stored.
func (o *Orchestrator) record(text string, result *domain.TriageResult) {
	if o.history == nil {
		return
	}

	hash := sha256.Sum256([]byte(text))
	rec := &domain.TriageRecord{
		ID:            uuid.New().String(),
		RequestID:     result.RequestID,
		InputHash:     hex.EncodeToString(hash[:]),
		Symptoms:      result.Symptoms,
		ConditionName: result.ConditionName,
		Confidence:    result.Confidence,
		Urgency:       result.Urgency,
		Severity:      result.Severity,
		IsEmergency:   result.IsEmergency,
		Validation:    string(result.Validation),
		ModelUsed:     result.ModelUsed,
		DurationMS:    result.ProcessingTime.Milliseconds(),
		CreatedAt:     result.Timestamp,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := o.history.Save(ctx, rec); err != nil {
		o.log.WithError(err).WithField("request_id", result.RequestID).
			Warn("Failed to persist triage record")
	}
}
