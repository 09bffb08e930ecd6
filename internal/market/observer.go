package market

import (
    "github.com/shopspring/decimal"
    "go.uber.org/zap"
)

// EventKind labels the lifecycle stage a negotiation event reports.
type EventKind string

const (
    EventStarted EventKind = "started"
    EventRound   EventKind = "round"
    EventAgreed  EventKind = "agreed"
    EventImpasse EventKind = "impasse"
    EventFailed  EventKind = "failed"
)

// NegotiationEvent is a structured diagnostic record emitted while a
// negotiation runs. Price and Quantity are only meaningful for
// EventAgreed; Err only for EventFailed.
type NegotiationEvent struct {
    Kind     EventKind
    BidID    string
    TicketID string
    Round    int
    Price    decimal.Decimal
    Quantity int
    Err      error
}

// Observer receives negotiation diagnostics. Implementations must be
// safe for concurrent use: the orchestrator shares one observer across
// all negotiations in a batch.
type Observer interface {
    Observe(ev NegotiationEvent)
}

// zapObserver logs negotiation events through a zap logger.
type zapObserver struct {
    log *zap.Logger
}

// NewZapObserver returns an Observer that writes structured log lines
// for every negotiation event.
func NewZapObserver(log *zap.Logger) Observer {
    return &zapObserver{log: log}
}

func (o *zapObserver) Observe(ev NegotiationEvent) {
    fields := []zap.Field{
        zap.String("bid_id", ev.BidID),
        zap.String("ticket_id", ev.TicketID),
        zap.Int("round", ev.Round),
    }
    switch ev.Kind {
    case EventStarted:
        o.log.Info("negotiation started", fields...)
    case EventRound:
        o.log.Debug("negotiation round completed", fields...)
    case EventAgreed:
        fields = append(fields,
            zap.String("price", ev.Price.StringFixed(2)),
            zap.Int("quantity", ev.Quantity))
        o.log.Info("negotiation agreed", fields...)
    case EventImpasse:
        o.log.Info("negotiation impasse", fields...)
    case EventFailed:
        fields = append(fields, zap.Error(ev.Err))
        o.log.Warn("negotiation failed", fields...)
    }
}
