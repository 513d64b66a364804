package services

import (
	"encoding/json"
	"log/slog"

	"artisanhub/pkg/rabbitmq"
)

// Routing keys for marketplace events.
const (
	EventArtisanCreated     = "artisan.created"
	EventProductCreated     = "product.created"
	EventProductStockLow    = "product.stock_low"
	EventProductOutOfStock  = "product.out_of_stock"
	EventProductImageAdded  = "product.image_added"
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher is satisfied by *rabbitmq.Client.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// eventEmitter publishes best-effort: failures are logged, never returned.
type eventEmitter struct {
	publisher EventPublisher
	logger    *slog.Logger
}

func (e eventEmitter) emit(routingKey string, payload map[string]any) {
	if e.publisher == nil {
		e.logger.Debug("event publisher not configured, skipping", "routing_key", routingKey)
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		e.logger.Warn("failed to encode event", "routing_key", routingKey, "error", err)
		return
	}
	if err := e.publisher.Publish(rabbitmq.Exchange, routingKey, body); err != nil {
		e.logger.Warn("failed to publish event", "routing_key", routingKey, "error", err)
	}
}

// emitStock announces a product that just ran low or out.
func (e eventEmitter) emitStock(productID, artisanID string, quantity, threshold int) {
	payload := map[string]any{"product_id": productID, "artisan_id": artisanID, "stock_quantity": quantity}
	switch {
	case quantity == 0:
		e.emit(EventProductOutOfStock, payload)
	case quantity <= threshold:
		e.emit(EventProductStockLow, payload)
	}
}
