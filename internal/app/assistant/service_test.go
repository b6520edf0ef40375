package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/fallback"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/chat"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/logging"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/retry"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
	"github.com/jsamuelsen11/mealplan-assistant/mocks"
)

const mealPayload = `{"name": "Chicken Bowl", "type": "LUNCH", "cuisine": "ASIAN", "calories": 520, "carbs": 48, ` +
	`"protein": 42, "fat": 14, "ingredients": [{"name": "Rice", "unit": "GRAMMES", "quantity": 150, ` +
	`"calories": 195, "carbs": 42, "protein": 4, "fat": 0.4}]}`

func mustMarshal(t *testing.T, v any) string {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 1,
		RetryableKinds: map[domain.ErrorKind]bool{
			domain.KindConnection: true,
			domain.KindTimeout:    true,
		},
	}
}

func newService(t *testing.T, opts ...Option) (*Service, *mocks.MockTransport, *mocks.MockActionStore) {
	t.Helper()

	transport := mocks.NewMockTransport(t)
	store := mocks.NewMockActionStore(t)
	v := schema.NewValidator(schema.DefaultRegistry())
	return NewService(transport, store, v, fastPolicy(), discardLogger(), opts...), transport, store
}

// stateRecorder collects the states a run passes through.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) observe(_ string, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) get() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestNewService_NilLogger(t *testing.T) {
	t.Parallel()

	v := schema.NewValidator(schema.DefaultRegistry())
	svc := NewService(mocks.NewMockTransport(t), mocks.NewMockActionStore(t), v, fastPolicy(), nil)
	require.NotNil(t, svc)
	assert.NotNil(t, svc.logger)
	assert.NotNil(t, svc.metrics)
	assert.NotNil(t, svc.Detector())
	assert.NotNil(t, svc.Fallback())
}

func TestRespond_ExecutesValidAction(t *testing.T) {
	t.Parallel()

	rec := &stateRecorder{}
	svc, transport, store := newService(t, WithStateObserver(rec.observe))

	text := "Here is your lunch.\n<ADD_MEAL>\n" + mealPayload + "\n</ADD_MEAL>"
	transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return(text, nil).Once()
	store.EXPECT().Execute(mock.Anything, nutrition.KindMeal, mock.Anything, "user-1").
		Run(func(_ context.Context, _ nutrition.EntityKind, entity nutrition.Entity, _ string) {
			assert.Equal(t, "Chicken Bowl", entity.Name())
		}).
		Return(nil).Once()

	reply, err := svc.Respond(context.Background(), "add a chicken bowl", "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, reply.RunID)
	assert.Equal(t, "Here is your lunch.", reply.Text)
	assert.Equal(t, 0, reply.RetryCount)
	require.NotNil(t, reply.Action)
	assert.Equal(t, nutrition.ActionAddMeal, reply.Action.Kind)
	assert.True(t, reply.Action.Success)
	assert.Empty(t, reply.Action.Message)
	assert.Equal(t, "Chicken Bowl", reply.Action.Entity.Name())

	assert.Equal(t, []State{StateRequesting, StateDetecting, StateValidating, StateDone}, rec.get())
}

func TestRespond_RetriesTransportFailures(t *testing.T) {
	t.Parallel()

	svc, transport, _ := newService(t)

	refused := domain.NewError(domain.KindConnection, "connection refused")
	transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return("", refused).Times(2)
	transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return("Eat more greens.", nil).Once()

	reply, err := svc.Respond(context.Background(), "any tips?", "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, reply.RetryCount)
	assert.Equal(t, "Eat more greens.", reply.Text)
	assert.Nil(t, reply.Action)
}

func TestRespond_TransportFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantRetries int
		wantMessage string
	}{
		{
			name:        "retryable kind exhausts retries",
			err:         domain.NewError(domain.KindTimeout, "deadline exceeded"),
			wantRetries: 2,
			wantMessage: domain.GenericUserMessage,
		},
		{
			name:        "non-retryable kind fails at once",
			err:         domain.NewError(domain.KindUnauthorized, "bad key"),
			wantRetries: 0,
			wantMessage: "You are not allowed to perform this action.",
		},
		{
			name: "rejected request keeps provider text out of the reply",
			err: domain.NewError(domain.KindValidation, "the request was rejected by the model provider").
				WithCause(errors.New("gemini: API key not valid. Please pass a valid API key.")),
			wantRetries: 0,
			wantMessage: "The provided data is not valid: the request was rejected by the model provider",
		},
		{
			name:        "plain error",
			err:         errors.New("boom"),
			wantRetries: 0,
			wantMessage: domain.GenericUserMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, transport, _ := newService(t)
			transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return("", tt.err).
				Times(tt.wantRetries + 1)

			reply, err := svc.Respond(context.Background(), "hello", "user-1")
			require.NoError(t, err)

			assert.Equal(t, tt.wantRetries, reply.RetryCount)
			assert.Equal(t, tt.wantMessage, reply.Text)
			require.NotNil(t, reply.Action)
			assert.Equal(t, nutrition.ActionUnknown, reply.Action.Kind)
			assert.False(t, reply.Action.Success)
			assert.Equal(t, tt.wantMessage, reply.Action.Message)
			assert.NotContains(t, reply.Text, "API key")
		})
	}
}

func TestRespond_NoAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		message  string
		modelOut string
		want     string
	}{
		{
			name:     "plain prose",
			message:  "is rice healthy?",
			modelOut: "  Rice is a good source of energy.  ",
			want:     "Rice is a good source of energy.",
		},
		{
			name:     "empty tag block",
			message:  "add a meal",
			modelOut: "<ADD_MEAL></ADD_MEAL>",
			want:     "",
		},
		{
			name:     "empty reply",
			message:  "help me with a plan",
			modelOut: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, transport, _ := newService(t)
			transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return(tt.modelOut, nil).Once()

			reply, err := svc.Respond(context.Background(), tt.message, "user-1")
			require.NoError(t, err)
			assert.Nil(t, reply.Action)

			if tt.want != "" {
				assert.Equal(t, tt.want, reply.Text)
				return
			}
			assert.True(t, strings.HasSuffix(reply.Text, fallback.Apology), "got %q", reply.Text)
		})
	}
}

func TestRespond_InvalidActionIsNotExecuted(t *testing.T) {
	t.Parallel()

	rec := &stateRecorder{}
	svc, transport, _ := newService(t, WithStateObserver(rec.observe))

	text := `Saved! <ADD_MEAL>{"name": "Toast", "type": "BREAKFAST", "cuisine": "FRENCH", "ingredients": []}</ADD_MEAL>`
	transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return(text, nil).Once()

	reply, err := svc.Respond(context.Background(), "add toast", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Saved!", reply.Text)
	require.NotNil(t, reply.Action)
	assert.Equal(t, nutrition.ActionAddMeal, reply.Action.Kind)
	assert.False(t, reply.Action.Success)
	assert.NotEmpty(t, reply.Action.Message)
	assert.True(t, reply.Action.Entity.IsZero())

	states := rec.get()
	assert.Equal(t, StateDone, states[len(states)-1])
}

func TestRespond_ExecutorFailure(t *testing.T) {
	t.Parallel()

	svc, transport, store := newService(t)

	text := "<ADD_MEAL>" + mealPayload + "</ADD_MEAL>"
	transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return(text, nil).Once()
	store.EXPECT().Execute(mock.Anything, nutrition.KindMeal, mock.Anything, "user-1").
		Return(errors.New("disk full")).Once()

	reply, err := svc.Respond(context.Background(), "add it", "user-1")
	require.NoError(t, err)

	require.NotNil(t, reply.Action)
	assert.False(t, reply.Action.Success)
	// BUSINESS_LOGIC is user-facing, so the executor's message reaches the user.
	assert.Equal(t, "disk full", reply.Action.Message)
	assert.NotContains(t, reply.Text, "ADD_MEAL")
}

func TestRespond_CancelledContext(t *testing.T) {
	t.Parallel()

	svc, transport, _ := newService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return("", context.Canceled).Once()

	reply, err := svc.Respond(ctx, "hello", "user-1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, reply)
}

func TestRespond_SendsRenderedPrompt(t *testing.T) {
	t.Parallel()

	svc, transport, _ := newService(t, WithLanguage("fr"))

	transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		Run(func(_ context.Context, prompt string, opts ports.GenerateOptions) {
			assert.Contains(t, prompt, "USER QUESTION: what is a calorie?")
			assert.Contains(t, prompt, "Answer in fr.")
			assert.Equal(t, SystemPrompt, opts.SystemPrompt)
		}).
		Return("A unit of energy.", nil).Once()

	_, err := svc.Respond(context.Background(), "what is a calorie?", "user-1")
	require.NoError(t, err)
}

func TestGenerateMealWithRecovery(t *testing.T) {
	t.Parallel()

	t.Run("valid output", func(t *testing.T) {
		t.Parallel()

		svc, transport, _ := newService(t)
		transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return(mealPayload, nil).Once()

		gen, err := svc.GenerateMealWithRecovery(context.Background(), chat.MealRequest{MealType: nutrition.MealLunch})
		require.NoError(t, err)

		assert.Equal(t, "Chicken Bowl", gen.Entity.Name())
		assert.False(t, gen.HadRecovery)
		assert.False(t, gen.UsedFallback)
		assert.Empty(t, gen.RecoveryActions)
	})

	t.Run("recovers loose output", func(t *testing.T) {
		t.Parallel()

		rec := &stateRecorder{}
		svc, transport, _ := newService(t, WithStateObserver(rec.observe))

		out := "Sure!\n<ADD_MEAL>\n{\"name\": \"Pasta\", \"type\": \"dinner\", \"calories\": \"600\", " +
			"\"ingredients\": [{\"name\": \"Penne\", \"unit\": \"GRAMMES\", \"quantity\": 200, " +
			"\"calories\": 600, \"carbs\": 80, \"protein\": 20, \"fat\": 15}]}\n</ADD_MEAL>"
		transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return(out, nil).Once()

		gen, err := svc.GenerateMealWithRecovery(context.Background(), chat.MealRequest{})
		require.NoError(t, err)

		assert.True(t, gen.HadRecovery)
		assert.False(t, gen.UsedFallback)
		assert.NotEmpty(t, gen.RecoveryActions)
		require.NotNil(t, gen.Entity.Meal)
		assert.Equal(t, nutrition.MealDinner, gen.Entity.Meal.Type)
		assert.Contains(t, rec.get(), StateRecovering)
		assert.NotContains(t, rec.get(), StateFallingBack)
	})

	t.Run("falls back when recovery fails", func(t *testing.T) {
		t.Parallel()

		rec := &stateRecorder{}
		svc, transport, _ := newService(t, WithStateObserver(rec.observe))
		transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
			Return(`{"type": "LUNCH", "calories": 300}`, nil).Once()

		req := chat.MealRequest{MealType: nutrition.MealBreakfast, Calories: 400}
		gen, err := svc.GenerateMealWithRecovery(context.Background(), req)
		require.NoError(t, err)

		assert.True(t, gen.UsedFallback)
		require.NotNil(t, gen.Entity.Meal)
		assert.Equal(t, nutrition.MealBreakfast, gen.Entity.Meal.Type)
		require.NotEmpty(t, gen.RecoveryActions)
		assert.True(t, strings.HasPrefix(gen.RecoveryActions[len(gen.RecoveryActions)-1], "fallback used: "))
		assert.Contains(t, rec.get(), StateFallingBack)
	})

	t.Run("falls back when the model is unavailable", func(t *testing.T) {
		t.Parallel()

		svc, transport, _ := newService(t)
		transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
			Return("", domain.NewError(domain.KindConnection, "refused")).Times(3)

		gen, err := svc.GenerateMealWithRecovery(context.Background(), chat.MealRequest{})
		require.NoError(t, err)

		assert.True(t, gen.UsedFallback)
		assert.Equal(t, 2, gen.RetryCount)
		assert.Equal(t, []string{"fallback used: model unavailable"}, gen.RecoveryActions)

		out := svc.validator.Validate(mustMarshal(t, gen.Entity), nutrition.KindMeal)
		assert.True(t, out.Success, "fallback meal must be schema-valid: %v", out.Errors)
	})

	t.Run("rejects invalid request", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		_, err := svc.GenerateMealWithRecovery(context.Background(), chat.MealRequest{Calories: -1})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "calories")
	})
}

func TestGeneratePlanWithRecovery(t *testing.T) {
	t.Parallel()

	t.Run("recovers a bare object", func(t *testing.T) {
		t.Parallel()

		svc, transport, _ := newService(t)
		transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return("{", nil).Once()

		gen, err := svc.GeneratePlanWithRecovery(context.Background(), chat.PlanRequest{DurationWeeks: 4})
		require.NoError(t, err)

		assert.True(t, gen.HadRecovery)
		assert.False(t, gen.UsedFallback)
		require.NotNil(t, gen.Entity.Plan)
		assert.Equal(t, schema.DefaultPlanName, gen.Entity.Plan.Name)
		assert.Equal(t, 4, gen.Entity.Plan.DurationWeeks)
	})

	t.Run("fallback keeps goal and duration", func(t *testing.T) {
		t.Parallel()

		svc, transport, _ := newService(t)
		transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
			Return("", domain.NewError(domain.KindContentFiltered, "blocked")).Once()

		req := chat.PlanRequest{Goal: nutrition.GoalWeightLoss, DurationWeeks: 6}
		gen, err := svc.GeneratePlanWithRecovery(context.Background(), req)
		require.NoError(t, err)

		assert.True(t, gen.UsedFallback)
		require.NotNil(t, gen.Entity.Plan)
		assert.Equal(t, nutrition.GoalWeightLoss, gen.Entity.Plan.Goal)
		assert.Equal(t, 6, gen.Entity.Plan.DurationWeeks)
		assert.GreaterOrEqual(t, len(gen.Entity.Plan.Meals), 3)
	})

	t.Run("rejects negative duration", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		_, err := svc.GeneratePlanWithRecovery(context.Background(), chat.PlanRequest{DurationWeeks: -2})
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestGenerate_CancelledContext(t *testing.T) {
	t.Parallel()

	svc, transport, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return("", context.Canceled).Once()

	gen, err := svc.GenerateMealWithRecovery(ctx, chat.MealRequest{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, gen)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		ext, err := svc.Extract(context.Background(), "```json\n"+mealPayload+"\n```", nutrition.KindMeal)
		require.NoError(t, err)
		assert.True(t, ext.Success)
		assert.Equal(t, "Chicken Bowl", ext.Entity.Name())
		assert.Empty(t, ext.Errors)
	})

	t.Run("unrecoverable reports field errors", func(t *testing.T) {
		t.Parallel()

		ext, err := svc.Extract(context.Background(), `{"type": "LUNCH", "calories": 10}`, nutrition.KindMeal)
		require.NoError(t, err)
		assert.False(t, ext.Success)
		assert.NotEmpty(t, ext.Message)
		assert.Contains(t, ext.Errors, "name")
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Extract(context.Background(), mealPayload, nutrition.EntityKind("recipe"))
		require.Error(t, err)
		assert.Equal(t, domain.KindUnsupportedOperation, domain.KindOf(err))
	})
}

func TestListActions(t *testing.T) {
	t.Parallel()

	t.Run("delegates to store", func(t *testing.T) {
		t.Parallel()

		svc, _, store := newService(t)
		want := []nutrition.ActionRecord{{ID: "a1", Kind: nutrition.KindMeal, ActorID: "user-1", Name: "Chicken Bowl"}}
		store.EXPECT().ListActions(mock.Anything, "user-1", 10).Return(want, nil).Once()

		got, err := svc.ListActions(context.Background(), "user-1", 10)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		svc, _, store := newService(t)
		store.EXPECT().ListActions(mock.Anything, "user-1", 10).Return(nil, errors.New("locked")).Once()

		got, err := svc.ListActions(context.Background(), "user-1", 10)
		if err == nil {
			t.Fatal("expected error")
		}
		if got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("logs through the request logger", func(t *testing.T) {
		t.Parallel()

		svc, _, store := newService(t)
		store.EXPECT().ListActions(mock.Anything, "user-1", 10).Return(nil, errors.New("locked")).Once()

		var buf strings.Builder
		reqLogger := slog.New(slog.NewTextHandler(&buf, nil)).With(slog.String("request_id", "req-42"))
		ctx := logging.WithLogger(context.Background(), reqLogger)

		_, err := svc.ListActions(ctx, "user-1", 10)
		require.Error(t, err)
		assert.Contains(t, buf.String(), "failed to list actions")
		assert.Contains(t, buf.String(), "request_id=req-42")
	})
}

func TestService_ConcurrentRespond(t *testing.T) {
	t.Parallel()

	svc, transport, _ := newService(t)
	transport.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).Return("Drink water.", nil)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reply, err := svc.Respond(context.Background(), "tip?", "user-1")
			if err != nil {
				t.Errorf("Respond: %v", err)
				return
			}
			ids[i] = reply.RunID
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate run id %s", id)
		seen[id] = true
	}
}
