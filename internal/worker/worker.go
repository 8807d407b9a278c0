package worker

import (
	"context"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// StatsWorker consumes OrderCreated events and maintains the customers'
// cumulative order count and spend. The increment is best-effort from
// the checkout path's perspective: it happens here, after the response,
// and redelivery plus the processed_events table make it idempotent.
type StatsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewStatsWorker creates a new customer stats worker
func NewStatsWorker(consumer *broker.Consumer, store *store.Store) *StatsWorker {
	w := &StatsWorker{
		consumer: consumer,
		store:    store,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *StatsWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting customer stats worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StatsWorker) Stop() error {
	w.logger.Info("Stopping customer stats worker")
	return w.consumer.Close()
}

func (w *StatsWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	// Guest checkouts without a customer row have nothing to increment.
	if event.CustomerID != "" {
		if err := w.store.IncrementCustomerStats(ctx, event.CustomerID, event.TotalUYU); err != nil {
			return err
		}
		util.CustomerStatsUpdatedTotal.Inc()
		w.logger.Info("Customer stats updated",
			zap.String("customer_id", event.CustomerID),
			zap.Int64("order_total_uyu", event.TotalUYU))
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}
