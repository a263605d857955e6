package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/marginalfriend/my-garage/internal/order/domain"
)

// NotificationHandler 消费订单事件，驱动带外通知。
// 事件经由 outbox 投递，至少一次语义，通知侧需要容忍重复。
type NotificationHandler struct {
	logger *slog.Logger
}

func NewNotificationHandler(logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{logger: logger}
}

func (h *NotificationHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case domain.OrderPlacedEventType:
		var event domain.OrderPlacedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal order placed event", "error", err)
			return err
		}
		h.logger.InfoContext(ctx, "order confirmation queued",
			"order_no", event.OrderNo,
			"customer_id", event.CustomerID,
			"total", event.TotalPrice.String())

	case domain.OrderCancelledEventType:
		var event domain.OrderCancelledEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal order cancelled event", "error", err)
			return err
		}
		h.logger.InfoContext(ctx, "cancellation notice queued",
			"order_no", event.OrderNo,
			"customer_id", event.CustomerID)

	case domain.PaymentStatusChangedEventType:
		var event domain.PaymentStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal payment status event", "error", err)
			return err
		}
		h.logger.InfoContext(ctx, "payment status notice queued",
			"order_no", event.OrderNo,
			"old_status", string(event.OldStatus),
			"new_status", string(event.NewStatus))

	case domain.LowStockDetectedEventType:
		var event domain.LowStockDetectedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal low stock event", "error", err)
			return err
		}
		h.logger.WarnContext(ctx, "restock alert",
			"product_id", event.ProductID,
			"product_name", event.ProductName,
			"stock", event.Stock,
			"threshold", event.Threshold)

	default:
		h.logger.WarnContext(ctx, "unknown order event topic", "topic", msg.Topic)
	}
	return nil
}
