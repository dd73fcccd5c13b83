// Package audit emits best-effort trail events for executed chatbot queries.
// Publishing is fire-and-forget: an unreachable bus never fails a request.
package audit

import (
	"context"
	"time"

	"simbah-be/internal/pkg/logger"
	"simbah-be/pkg/events"
	pktNats "simbah-be/pkg/nats"

	"github.com/google/uuid"
)

// Publisher abstracts the audit trail so services don't depend on NATS.
type Publisher interface {
	PublishQueryExecuted(ctx context.Context, requestId uuid.UUID, question, sql string, rowCount int, pdf bool)
	PublishQueryRejected(ctx context.Context, requestId uuid.UUID, question, sql, reason string)
}

// NatsPublisher implements Publisher on the NATS bus. A nil connection is
// tolerated so the service keeps working when NATS is down at boot.
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

var _ Publisher = &NatsPublisher{}

func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) PublishQueryExecuted(ctx context.Context, requestId uuid.UUID, question, sql string, rowCount int, pdf bool) {
	if p.publisher == nil {
		return
	}

	evt := events.BaseEvent{
		Type: "QUERY_EXECUTED",
		Data: map[string]interface{}{
			"request_id": requestId,
			"question":   question,
			"sql":        sql,
			"row_count":  rowCount,
			"pdf":        pdf,
		},
		OccurredAt: time.Now(),
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("AUDIT", "Failed to publish QUERY_EXECUTED event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) PublishQueryRejected(ctx context.Context, requestId uuid.UUID, question, sql, reason string) {
	if p.publisher == nil {
		return
	}

	evt := events.BaseEvent{
		Type: "QUERY_REJECTED",
		Data: map[string]interface{}{
			"request_id": requestId,
			"question":   question,
			"sql":        sql,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("AUDIT", "Failed to publish QUERY_REJECTED event", map[string]interface{}{"error": err.Error()})
	}
}
