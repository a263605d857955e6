package domain

import "context"

// EventPublisher 集成事件发布接口。
// PublishInTx 将事件写入 outbox，与业务写入共享同一个事务。
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, payload any) error
	PublishInTx(ctx context.Context, tx any, eventType string, key string, payload any) error
}
