package classify

import (
	"strings"
	"sync"
	"time"

	"brain_server/core/domain"
	"brain_server/pkg/logger"
)

// =============================================================================
// Classification Engine (pipeline orchestrator)
// =============================================================================

// Result bundles every stage output for one message. The host decides what to
// persist; the engine itself stores nothing.
type Result struct {
	Decision *domain.DecisionRecord
	Mood     *MoodResult
	State    string
	Intent   *IntentResult
	Risk     RiskAssessment
	Sales    SalesAnalysis
	Context  domain.IntentContext
}

// Engine runs the full per-message pipeline: mood and intent classification,
// state derivation, risk and sales analysis, then the decision. Stateless and
// safe for concurrent use; rule tables come from the RuleSource per call.
type Engine struct {
	rules    domain.RuleSource
	mood     *MoodClassifier
	intent   *IntentClassifier
	risk     *RiskAnalyzer
	sales    *SalesJudger
	decision *DecisionEngine
	now      func() time.Time
}

func NewEngine(rules domain.RuleSource, telemetry domain.TelemetrySink) *Engine {
	return &Engine{
		rules:    rules,
		mood:     NewMoodClassifier(telemetry),
		intent:   NewIntentClassifier(),
		risk:     NewRiskAnalyzer(),
		sales:    NewSalesJudger(),
		decision: NewDecisionEngine(),
		now:      time.Now,
	}
}

// Classify processes one message against the customer's prior snapshot. Any
// panic inside a stage degrades to the safe default rather than taking the
// request down.
func (e *Engine) Classify(message string, snapshot domain.CustomerSnapshot) (result Result) {
	now := e.now().UTC()

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("classification pipeline panic")
			result = Result{
				Decision: e.decision.SafeDefault(now),
				State:    StateNeutral,
				Context:  snapshot.Intent,
			}
		}
	}()

	// Empty or whitespace-only input is a neutral no-op: no classification,
	// no telemetry, no state change.
	if strings.TrimSpace(message) == "" {
		d := e.decision.SafeDefault(now)
		d.NextAction = "ignore"
		d.Rationale = "empty_message"
		return Result{Decision: d, State: StateNeutral, Context: snapshot.Intent}
	}

	tables := e.rules.Tables()
	prior := Prior{Mood: snapshot.LastMood, Intent: snapshot.LastIntent}

	// Mood and intent read only the message and the rule tables, so they run
	// concurrently.
	var (
		wg     sync.WaitGroup
		mood   *MoodResult
		intent *IntentResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		mood = e.mood.Classify(message, tables.Mood)
	}()
	go func() {
		defer wg.Done()
		intent = e.intent.Classify(message, tables.Intent, prior)
	}()
	wg.Wait()

	moodLabel := "neutral"
	if mood != nil {
		moodLabel = mood.Mood
	}

	state := DeriveEmotionalState(message, moodLabel, intent.Intent, tables.State)
	risk := e.risk.Analyze(message, snapshot)
	sales := e.sales.Analyze(message, moodLabel, snapshot)
	decision := e.decision.Decide(message, mood, state, intent, risk, sales, snapshot, now)

	ctx := ApplyContext(intent, snapshot.Intent, snapshot.LastIntent, moodLabel, now)

	return Result{
		Decision: decision,
		Mood:     mood,
		State:    state,
		Intent:   intent,
		Risk:     risk,
		Sales:    sales,
		Context:  ctx,
	}
}
