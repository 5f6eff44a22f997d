package facts

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"anima-hq/tulpa/pkg/script"
	"anima-hq/tulpa/pkg/script/eval"
	scripterrors "anima-hq/tulpa/pkg/script/errors"
	"anima-hq/tulpa/pkg/script/validator"
)

// maxIfDepth caps $if bodies nested inside $if bodies. Legitimate facts
// nest once or twice; the cap only stops pathological one-liners.
const maxIfDepth = 8

// Notifier delivers isolated evaluation errors to the entity owner.
// Implementations belong to the chat collaborator; the engine notifies
// once per distinct error, not on every message.
type Notifier interface {
	NotifyOwner(entityID, ownerID, message string)
}

// Observer receives evaluation telemetry. The metrics collector
// implements it; a nil Observer disables recording.
type Observer interface {
	RecordEvaluation(entity, decision string, d time.Duration)
	RecordDirectiveFire(directive string)
	RecordExpressionError(kind string)
	RecordRegexRejection(category string)
	RecordRetryScheduled()
}

// Engine orchestrates fact evaluation with owner notification and
// telemetry. The evaluation itself is stateless; the engine's only state
// is the per-entity dedupe set for error notifications.
type Engine struct {
	logger   *slog.Logger
	notifier Notifier
	observer Observer

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewEngine creates an evaluation engine. logger, notifier, and observer
// may each be nil.
func NewEngine(logger *slog.Logger, notifier Notifier, observer Observer) *Engine {
	if logger == nil {
		logger = slog.Default().With("component", "facts.engine")
	}
	return &Engine{
		logger:   logger,
		notifier: notifier,
		observer: observer,
		seen:     make(map[string]struct{}),
	}
}

// Evaluate runs the entity's fact set against the context, records
// telemetry, and notifies the owner of any new isolated errors.
func (e *Engine) Evaluate(entity *Entity, ectx *eval.Context) *Result {
	start := time.Now()
	res := EvaluateFacts(entity.Facts, ectx, entity.Defaults)
	res.Permissions.OwnerID = entity.OwnerID
	elapsed := time.Since(start)

	e.logger.Debug("facts evaluated",
		"entity", entity.Name,
		"decision", res.Decision(),
		"facts", len(res.Facts),
		"errors", len(res.Errors),
		"duration", elapsed,
	)

	if e.observer != nil {
		e.observer.RecordEvaluation(entity.Name, res.Decision(), elapsed)
		if res.RetryMs > 0 {
			e.observer.RecordRetryScheduled()
		}
		for _, err := range res.Errors {
			e.recordError(err)
		}
	}

	for _, err := range res.Errors {
		e.notifyOnce(entity, err)
	}
	return res
}

func (e *Engine) recordError(err error) {
	var ve *validator.Error
	if errors.As(err, &ve) {
		e.observer.RecordRegexRejection(string(ve.Category))
		return
	}
	if kind := scripterrors.KindOf(err); kind != "" {
		e.observer.RecordExpressionError(string(kind))
	}
}

// notifyOnce informs the entity owner of a distinct error exactly once
// for the lifetime of the engine.
func (e *Engine) notifyOnce(entity *Entity, err error) {
	if e.notifier == nil {
		return
	}
	key := entity.ID + "\x00" + err.Error()

	e.mu.Lock()
	_, dup := e.seen[key]
	if !dup {
		e.seen[key] = struct{}{}
	}
	e.mu.Unlock()

	if dup {
		return
	}
	e.logger.Warn("fact evaluation error",
		"entity", entity.Name,
		"error", err,
	)
	e.notifier.NotifyOwner(entity.ID, entity.OwnerID, err.Error())
}

// EvaluateFacts classifies all facts, evaluates every $if conditional
// against the context in declaration order, and produces the response
// decision and surviving fact list. It is a pure function of its inputs:
// identical facts and an identical context snapshot produce identical
// results.
//
// The last firing $respond wins; the last firing $retry wins; when a
// positive retry is set the response decision is left unset, since retry
// takes precedence and the caller must re-evaluate after the delay.
// Errors inside a single directive are isolated: the conditional is
// treated as not-triggered and evaluation continues.
func EvaluateFacts(factLines []string, ectx *eval.Context, defaults *Defaults) *Result {
	res := &Result{ShouldRespond: RespondUnset}

	ctx := prepareContext(factLines, ectx)

	ev := &factEval{res: res, ctx: ctx}
	for _, line := range factLines {
		ev.processLine(line, 0)
	}

	// Retry precedence: a pending retry defers the decision entirely.
	if res.RetryMs > 0 {
		res.ShouldRespond = RespondUnset
	}

	res.Permissions = derivePermissions(factLines, defaults)
	return res
}

// prepareContext returns a copy of ectx with the self bag and fact
// snapshot filled in from the fact list. The caller's context is never
// mutated.
func prepareContext(factLines []string, ectx *eval.Context) *eval.Context {
	ctx := *ectx

	self := make(map[string]string, len(ctx.Self))
	for k, v := range ctx.Self {
		self[k] = v
	}
	for _, line := range factLines {
		if m := configKeyRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			self[m[1]] = strings.TrimSpace(m[2])
		}
	}
	ctx.Self = self

	if ctx.Facts == nil {
		ctx.Facts = factLines
	}
	return &ctx
}

func derivePermissions(factLines []string, defaults *Defaults) *Permissions {
	p := Classify(factLines).Permissions
	if defaults != nil {
		if p.Edit == nil {
			p.Edit = defaults.Edit
		}
		if p.View == nil {
			p.View = defaults.View
		}
		if p.Use == nil {
			p.Use = defaults.Use
		}
		p.Blacklist = append(p.Blacklist, defaults.Blacklist...)
	}
	return p
}

type factEval struct {
	res *Result
	ctx *eval.Context
}

func (ev *factEval) processLine(line string, depth int) {
	p, err := parseLine(line)
	if err != nil {
		ev.res.Errors = append(ev.res.Errors, err)
		return
	}

	switch p.kind {
	case linePlain:
		ev.res.Facts = append(ev.res.Facts, ExpandMacros(p.text, ev.ctx.Name, ev.ctx.Author))

	case lineIf:
		ev.processIf(p, depth)

	case lineRespond:
		if p.respond {
			ev.res.ShouldRespond = RespondYes
		} else {
			ev.res.ShouldRespond = RespondNo
		}

	case lineRetry:
		ev.res.RetryMs = p.retryMs

	case lineConfig:
		ev.applyConfig(p)

	case lineEdit, lineView, lineUse, lineBlacklist, lineLocked:
		// Permission directives are resolved separately and contribute
		// nothing to the evaluation result.
	}
}

func (ev *factEval) processIf(p parsedLine, depth int) {
	if depth >= maxIfDepth {
		ev.res.Errors = append(ev.res.Errors, scripterrors.New(scripterrors.KindSyntax,
			"$if nesting exceeds %d levels", maxIfDepth))
		return
	}

	compiled, err := script.Compile(p.expr)
	if err != nil {
		ev.res.Errors = append(ev.res.Errors, err)
		return
	}
	truthy, err := ev.evalCondition(compiled)
	if err != nil {
		ev.res.Errors = append(ev.res.Errors, err)
		return
	}
	if truthy {
		ev.processLine(p.body, depth+1)
	}
}

// evalCondition evaluates a compiled $if condition. A panic inside the
// evaluator surfaces as an isolated error, never out of EvaluateFacts.
func (ev *factEval) evalCondition(compiled *script.Compiled) (truthy bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = scripterrors.New(scripterrors.KindType,
				"expression evaluation failed: %v", r)
		}
	}()
	return compiled.EvalTruthy(ev.ctx)
}

// applyConfig folds a recognized "key: value" fact into the result.
// Unrecognized keys remain plain facts; they already feed the self bag.
func (ev *factEval) applyConfig(p parsedLine) {
	switch p.key {
	case "avatar":
		ev.res.AvatarURL = p.value
	case "stream":
		ev.res.StreamMode = p.value
	case "memory":
		ev.res.MemoryScope = p.value
	case "context":
		ev.res.ContextExpr = p.value
	case "model":
		ev.res.ModelSpec = p.value
	case "freeform":
		ev.res.Freeform = p.value == "true" || p.value == "yes" || p.value == "on"
	case "strip":
		if err := script.ValidateRegexPattern(p.value); err != nil {
			ev.res.Errors = append(ev.res.Errors, err)
			return
		}
		ev.res.StripPatterns = append(ev.res.StripPatterns, p.value)
	default:
		ev.res.Facts = append(ev.res.Facts, ExpandMacros(p.text, ev.ctx.Name, ev.ctx.Author))
	}
}
