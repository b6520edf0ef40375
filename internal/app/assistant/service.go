// Package assistant runs the model-output pipeline: it calls the model under
// the retry policy, detects and validates embedded actions, executes valid
// ones, and in best-effort mode recovers or replaces invalid output.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/action"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/fallback"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/chat"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/logging"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/retry"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/telemetry"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

// Compile-time check that Service implements ports.AssistantService.
var _ ports.AssistantService = (*Service)(nil)

// Service implements ports.AssistantService. It holds only immutable
// collaborators; concurrent calls share nothing but the retry policy.
type Service struct {
	transport ports.Transport
	store     ports.ActionStore
	validator *schema.Validator
	detector  *action.Detector
	fallback  *fallback.Generator
	prompts   *Prompts
	policy    retry.Policy
	genOpts   ports.GenerateOptions
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
	observe   func(runID string, s State)
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records pipeline counters on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTags replaces the default action tag table.
func WithTags(tags action.TagTable) Option {
	return func(s *Service) { s.detector = action.NewDetector(s.validator, tags) }
}

// WithGenerateOptions sets the options passed on every transport call.
func WithGenerateOptions(o ports.GenerateOptions) Option {
	return func(s *Service) { s.genOpts = o }
}

// WithLanguage sets the language the model is asked to answer in.
func WithLanguage(lang string) Option {
	return func(s *Service) { s.prompts = NewPrompts(s.validator.Registry(), lang) }
}

// WithStateObserver registers fn to be called on every state transition.
func WithStateObserver(fn func(runID string, s State)) Option {
	return func(s *Service) { s.observe = fn }
}

// NewService creates a Service. The validator's registry drives detection,
// recovery, fallbacks and prompts alike. A nil logger discards output.
func NewService(
	transport ports.Transport,
	store ports.ActionStore,
	v *schema.Validator,
	policy retry.Policy,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		transport: transport,
		store:     store,
		validator: v,
		detector:  action.NewDetector(v, action.DefaultTags()),
		fallback:  fallback.NewGenerator(v, logger),
		prompts:   NewPrompts(v.Registry(), ""),
		policy:    policy,
		genOpts:   ports.GenerateOptions{SystemPrompt: SystemPrompt},
		tracer:    otel.GetTracerProvider().Tracer("assistant"),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		// Instruments from a noop provider cannot fail.
		s.metrics, _ = telemetry.NewMetrics(noop.NewMeterProvider(), "assistant")
	}
	return s
}

// Detector returns the detector used for model replies.
func (s *Service) Detector() *action.Detector {
	return s.detector
}

// Fallback returns the fallback generator.
func (s *Service) Fallback() *fallback.Generator {
	return s.fallback
}

// run is the per-call state: identifiers, the span and the current state.
type run struct {
	id    string
	op    string
	span  trace.Span
	state State
	s     *Service
}

func (s *Service) start(ctx context.Context, op string) (context.Context, *run) {
	r := &run{id: uuid.NewString(), op: op, s: s, state: StateIdle}
	ctx, r.span = s.tracer.Start(ctx, "assistant."+op, trace.WithAttributes(
		attribute.String("run.id", r.id),
	))
	return ctx, r
}

func (r *run) enter(st State) {
	r.state = st
	r.span.AddEvent(st.String())
	if r.s.observe != nil {
		r.s.observe(r.id, st)
	}
}

func (r *run) end(ctx context.Context, result string) {
	r.enter(StateDone)
	r.s.metrics.PipelineRunTotal.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrOperation.String(r.op),
		telemetry.AttrResult.String(result),
	))
	r.span.SetAttributes(telemetry.AttrResult.String(result))
	r.span.End()
}

// request calls the transport under the retry policy.
func (s *Service) request(ctx context.Context, r *run, prompt string) (string, int, error) {
	r.enter(StateRequesting)
	return retry.Run(ctx, s.policy, func(ctx context.Context) (string, error) {
		return s.transport.Generate(ctx, prompt, s.genOpts)
	}, retry.WithHook(s.onRetry(ctx, r)))
}

func (s *Service) onRetry(ctx context.Context, r *run) retry.Hook {
	return func(err *domain.Error, attempt int, delay time.Duration) {
		s.metrics.RetryTotal.Add(ctx, 1, metric.WithAttributes(telemetry.AttrErrorKind.String(err.Kind.String())))
		s.log(ctx).WarnContext(ctx, "retrying model request",
			slog.String("operation", r.op),
			slog.String("run_id", r.id),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)
	}
}

// Respond implements ports.AssistantService.
func (s *Service) Respond(ctx context.Context, message, actorID string) (*chat.Reply, error) {
	ctx, r := s.start(ctx, "Respond")
	r.span.SetAttributes(attribute.String("actor.id", actorID))

	prompt, err := s.prompts.Chat(message)
	if err != nil {
		r.end(ctx, "error")
		return nil, fmt.Errorf("rendering chat prompt: %w", err)
	}

	text, retries, err := s.request(ctx, r, prompt)
	if err != nil {
		if ctx.Err() != nil {
			r.end(ctx, "cancelled")
			return nil, ctx.Err()
		}
		de := domain.Classify(err, "model request failed", domain.KindUnknown, nil, false)
		s.logFailure(ctx, r, de, slog.String("actor_id", actorID))
		r.span.SetStatus(codes.Error, de.Error())
		r.end(ctx, "transport_error")
		msg := domain.FormatForUser(de)
		return &chat.Reply{
			RunID:      r.id,
			Text:       msg,
			Action:     &chat.ActionResult{Kind: nutrition.ActionUnknown, Message: msg},
			RetryCount: retries,
		}, nil
	}

	r.enter(StateDetecting)
	det := s.detector.Detect(text)
	reply := &chat.Reply{RunID: r.id, Text: s.detector.StripMarkup(text), RetryCount: retries}

	if det.None() {
		if !det.IsValid {
			s.logFailure(ctx, r, det.Err)
		}
		if reply.Text == "" {
			s.metrics.FallbackTotal.Add(ctx, 1, metric.WithAttributes(telemetry.AttrOperation.String(r.op)))
			reply.Text = s.fallback.Text(message)
		}
		r.end(ctx, "no_action")
		return reply, nil
	}

	r.enter(StateValidating)
	s.metrics.ActionTotal.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrActionKind.String(det.Kind.String()),
		attribute.Bool("valid", det.IsValid),
	))
	reply.Action = &chat.ActionResult{Kind: det.Kind}

	if !det.IsValid {
		s.log(ctx).InfoContext(ctx, "detected action is invalid",
			slog.String("operation", r.op),
			slog.String("run_id", r.id),
			slog.String("action_kind", det.Kind.String()),
			slog.Any("fields", det.Errors),
		)
		reply.Action.Message = det.ValidationMessage
		r.end(ctx, "invalid_action")
		return reply, nil
	}

	kind, _ := det.Kind.EntityKind()
	if err := s.store.Execute(ctx, kind, det.Entity, actorID); err != nil {
		de := domain.Classify(err, "action could not be saved", domain.KindBusinessLogic, nil, false)
		s.logFailure(ctx, r, de,
			slog.String("actor_id", actorID),
			slog.String("action_kind", det.Kind.String()),
		)
		reply.Action.Message = domain.FormatForUser(de)
		r.end(ctx, "executor_error")
		return reply, nil
	}

	reply.Action.Success = true
	reply.Action.Entity = det.Entity
	s.log(ctx).InfoContext(ctx, "action executed",
		slog.String("run_id", r.id),
		slog.String("actor_id", actorID),
		slog.String("action_kind", det.Kind.String()),
		slog.String("name", det.Entity.Name()),
	)
	r.end(ctx, "executed")
	return reply, nil
}

// GenerateMealWithRecovery implements ports.AssistantService.
func (s *Service) GenerateMealWithRecovery(ctx context.Context, req chat.MealRequest) (*chat.Generation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	prompt, err := s.prompts.Meal(req)
	if err != nil {
		return nil, fmt.Errorf("rendering meal prompt: %w", err)
	}
	return s.generate(ctx, "GenerateMeal", nutrition.KindMeal, prompt, fallback.Context{
		MealType: req.MealType,
		Cuisine:  req.Cuisine,
		Calories: req.Calories,
	})
}

// GeneratePlanWithRecovery implements ports.AssistantService.
func (s *Service) GeneratePlanWithRecovery(ctx context.Context, req chat.PlanRequest) (*chat.Generation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	prompt, err := s.prompts.Plan(req)
	if err != nil {
		return nil, fmt.Errorf("rendering plan prompt: %w", err)
	}
	gen, err := s.generate(ctx, "GeneratePlan", nutrition.KindPlan, prompt, fallback.Context{
		Goal:     req.Goal,
		Calories: req.Calories,
	})
	if err != nil {
		return nil, err
	}
	if gen.Entity.Plan.DurationWeeks == 0 && req.DurationWeeks > 0 {
		gen.Entity.Plan.DurationWeeks = req.DurationWeeks
	}
	return gen, nil
}

// generate is the best-effort pipeline: request, extract, validate with
// recovery, and fall back when either the transport or recovery fails.
func (s *Service) generate(
	ctx context.Context,
	op string,
	kind nutrition.EntityKind,
	prompt string,
	fc fallback.Context,
) (*chat.Generation, error) {
	ctx, r := s.start(ctx, op)
	r.span.SetAttributes(telemetry.AttrEntityKind.String(kind.String()))

	text, retries, err := s.request(ctx, r, prompt)
	gen := &chat.Generation{RunID: r.id, RetryCount: retries}

	if err != nil {
		if ctx.Err() != nil {
			r.end(ctx, "cancelled")
			return nil, ctx.Err()
		}
		s.logFailure(ctx, r, domain.Classify(err, "model request failed", domain.KindUnknown, nil, false))
		return s.useFallback(ctx, r, gen, kind, fc, "model unavailable")
	}

	r.enter(StateExtracting)
	payload := text
	if det := s.detector.Detect(text); det.Tagged {
		payload = det.RawPayload
	}

	r.enter(StateValidating)
	out := s.validator.ValidateWithRecovery(payload, kind)
	if out.HadRecovery {
		r.enter(StateRecovering)
		s.metrics.RecoveryTotal.Add(ctx, 1, metric.WithAttributes(
			telemetry.AttrEntityKind.String(kind.String()),
			attribute.Bool("success", out.Success),
		))
	}
	gen.HadRecovery = out.HadRecovery
	gen.RecoveryActions = out.RecoveryActions

	if !out.Success {
		s.log(ctx).WarnContext(ctx, "model output could not be recovered",
			slog.String("operation", op),
			slog.String("run_id", r.id),
			slog.String("entity_kind", kind.String()),
			slog.String("reason", out.Message),
		)
		return s.useFallback(ctx, r, gen, kind, fc, out.Message)
	}

	gen.Entity = out.Entity
	result := "valid"
	if out.HadRecovery {
		result = "recovered"
	}
	r.end(ctx, result)
	return gen, nil
}

func (s *Service) useFallback(
	ctx context.Context,
	r *run,
	gen *chat.Generation,
	kind nutrition.EntityKind,
	fc fallback.Context,
	reason string,
) (*chat.Generation, error) {
	r.enter(StateFallingBack)
	entity, err := s.fallback.Entity(kind, fc)
	if err != nil {
		de := domain.Classify(err, "fallback failed", domain.KindBusinessLogic, nil, false)
		s.logFailure(ctx, r, de)
		r.span.SetStatus(codes.Error, de.Error())
		r.end(ctx, "fallback_error")
		return nil, de
	}

	s.metrics.FallbackTotal.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrOperation.String(r.op),
		telemetry.AttrEntityKind.String(kind.String()),
	))
	gen.Entity = entity
	gen.UsedFallback = true
	gen.RecoveryActions = append(gen.RecoveryActions, "fallback used: "+reason)
	r.end(ctx, "fallback")
	return gen, nil
}

// Extract implements ports.AssistantService.
func (s *Service) Extract(_ context.Context, text string, kind nutrition.EntityKind) (*chat.Extraction, error) {
	out := s.validator.ValidateWithRecovery(text, kind)
	if out.Err != nil && out.Err.Kind == domain.KindUnsupportedOperation {
		return nil, out.Err
	}

	ext := &chat.Extraction{
		Success:         out.Success,
		Entity:          out.Entity,
		Message:         out.Message,
		HadRecovery:     out.HadRecovery,
		RecoveryActions: out.RecoveryActions,
	}
	if len(out.Errors) > 0 {
		ext.Errors = make(map[string]string, len(out.Errors))
		for _, fe := range out.Errors {
			ext.Errors[fe.Field] = fe.Message
		}
	}
	return ext, nil
}

// ListActions implements ports.AssistantService.
func (s *Service) ListActions(ctx context.Context, actorID string, limit int) ([]nutrition.ActionRecord, error) {
	records, err := s.store.ListActions(ctx, actorID, limit)
	if err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to list actions",
			slog.String("operation", "ListActions"),
			slog.String("actor_id", actorID),
			slog.Any("error", err),
		)
		return nil, err
	}
	return records, nil
}

// log prefers the request-scoped logger so HTTP identifiers are included.
func (s *Service) log(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger)
}

func (s *Service) logFailure(ctx context.Context, r *run, err error, attrs ...slog.Attr) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Classify(err, "pipeline failure", domain.KindUnknown, nil, false)
	}
	attrs = append(attrs,
		slog.String("operation", r.op),
		slog.String("run_id", r.id),
		slog.String("state", r.state.String()),
	)
	domain.LogError(ctx, s.log(ctx), de, attrs...)
}
