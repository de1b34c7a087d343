package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-storefront/internal/app/api"
	ordersobs "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	platformobservability "github.com/Apurer/go-gin-storefront/internal/platform/observability"
	orderactivities "github.com/Apurer/go-gin-storefront/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-storefront/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "storefront-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer platformobservability.Shutdown(instruments, shutdown)
	logger := instruments.Logger

	cfg, err := api.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	stores, cleanupStores, err := api.BuildStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build repositories", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupStores()

	var opts []ordersapp.Option
	gateway, err := api.BuildPaymentGateway(cfg)
	if err != nil {
		logger.Error("failed to configure payment gateway", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if gateway != nil {
		opts = append(opts, ordersapp.WithPaymentGateway(gateway))
	} else {
		logger.Warn("PAYMENTS_BASE_URL not set, capture activities will fail closed")
	}
	orderService := ordersobs.New(
		ordersapp.NewService(stores.Orders, opts...),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	checkoutActivities := orderactivities.NewActivities(orderService)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OnlineCheckoutTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OnlineCheckoutWorkflow, workflow.RegisterOptions{Name: orderworkflows.OnlineCheckoutWorkflowName})
	w.RegisterActivityWithOptions(checkoutActivities.ReserveOrder, activity.RegisterOptions{Name: orderactivities.ReserveOrderActivityName})
	w.RegisterActivityWithOptions(checkoutActivities.CapturePayment, activity.RegisterOptions{Name: orderactivities.CapturePaymentActivityName})
	w.RegisterActivityWithOptions(checkoutActivities.ConfirmPayment, activity.RegisterOptions{Name: orderactivities.ConfirmPaymentActivityName})
	w.RegisterActivityWithOptions(checkoutActivities.ReleaseOrder, activity.RegisterOptions{Name: orderactivities.ReleaseOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OnlineCheckoutTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
