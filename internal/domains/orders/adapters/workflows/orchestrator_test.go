package workflows

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-storefront/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-storefront/internal/platform/temporal/workflows/orders"
)

func completedRun(t *testing.T, order domain.Order) *mocks.WorkflowRun {
	run := mocks.NewWorkflowRun(t)
	run.On("Get", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*domain.Order) = order
		}).
		Return(nil)
	return run
}

func TestTemporalOrderWorkflows_StartsWorkflowByRegisteredName(t *testing.T) {
	temporalClient := mocks.NewClient(t)
	input := ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "ONLINE", IdempotencyKey: "k1"}
	wantID := buildCheckoutWorkflowID(input)

	temporalClient.On("ExecuteWorkflow",
		mock.Anything,
		mock.MatchedBy(func(options client.StartWorkflowOptions) bool {
			return options.ID == wantID &&
				options.TaskQueue == orderworkflows.OnlineCheckoutTaskQueue &&
				options.WorkflowIDReusePolicy == enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY
		}),
		orderworkflows.OnlineCheckoutWorkflowName,
		mock.MatchedBy(func(in orderworkflows.OnlineCheckoutWorkflowInput) bool {
			return in.Command == input
		}),
	).Return(completedRun(t, domain.Order{ID: "o1", UserID: "u1"}), nil).Once()

	order, err := NewTemporalOrderWorkflows(temporalClient).PlaceOnlineOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
}

func TestTemporalOrderWorkflows_AttachesToRunningCheckout(t *testing.T) {
	temporalClient := mocks.NewClient(t)
	input := ports.PlaceOrderInput{UserID: "u1", Address: "addr", PaymentMode: "ONLINE", IdempotencyKey: "k1"}
	workflowID := buildCheckoutWorkflowID(input)

	temporalClient.On("ExecuteWorkflow", mock.Anything, mock.Anything, orderworkflows.OnlineCheckoutWorkflowName, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", "run-1")).Once()
	temporalClient.On("GetWorkflow", mock.Anything, workflowID, "run-1").
		Return(completedRun(t, domain.Order{ID: "o1", UserID: "u1"})).Once()

	order, err := NewTemporalOrderWorkflows(temporalClient).PlaceOnlineOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
}

func TestTemporalOrderWorkflows_ErrorMapping(t *testing.T) {
	t.Run("start failure without key", func(t *testing.T) {
		temporalClient := mocks.NewClient(t)
		temporalClient.On("ExecuteWorkflow", mock.Anything, mock.Anything, orderworkflows.OnlineCheckoutWorkflowName, mock.Anything).
			Return(nil, serviceerror.NewUnavailable("frontend down")).Once()

		_, err := NewTemporalOrderWorkflows(temporalClient).PlaceOnlineOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1"})
		require.ErrorIs(t, err, ports.ErrPaymentUnavailable)
	})

	t.Run("declined run", func(t *testing.T) {
		temporalClient := mocks.NewClient(t)
		run := mocks.NewWorkflowRun(t)
		run.On("Get", mock.Anything, mock.Anything).
			Return(temporal.NewNonRetryableApplicationError("card declined", orderactivities.ErrTypePaymentDeclined, nil))
		temporalClient.On("ExecuteWorkflow", mock.Anything, mock.Anything, orderworkflows.OnlineCheckoutWorkflowName, mock.Anything).
			Return(run, nil).Once()

		_, err := NewTemporalOrderWorkflows(temporalClient).PlaceOnlineOrder(context.Background(), ports.PlaceOrderInput{UserID: "u1"})
		require.ErrorIs(t, err, ports.ErrPaymentDeclined)
	})
}

func TestUnconfiguredOrchestrator(t *testing.T) {
	_, err := (&TemporalOrderWorkflows{}).PlaceOnlineOrder(context.Background(), ports.PlaceOrderInput{})
	require.Error(t, err)
}

func TestBuildCheckoutWorkflowID_IsUniquePerAttempt(t *testing.T) {
	input := ports.PlaceOrderInput{UserID: "u1"}
	first, second := buildCheckoutWorkflowID(input), buildCheckoutWorkflowID(input)
	assert.True(t, strings.HasPrefix(first, "online-checkout-u1-"))
	assert.NotEqual(t, first, second)

	keyed := ports.PlaceOrderInput{UserID: "u1", IdempotencyKey: "checkout-42"}
	assert.Equal(t, buildCheckoutWorkflowID(keyed), buildCheckoutWorkflowID(keyed))
	assert.NotEqual(t, buildCheckoutWorkflowID(keyed), buildCheckoutWorkflowID(ports.PlaceOrderInput{UserID: "u2", IdempotencyKey: "checkout-42"}))
}
