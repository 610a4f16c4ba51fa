// Package events delivers engine events to subscribers. Emission is
// fire-and-forget: the engine never waits on or learns about delivery.
package events

import (
	"log"

	"github.com/alexdziarn/fool.fun/internal/domain"
)

// Sink receives engine events.
type Sink interface {
	EmitInitialize(e domain.InitializeEvent)
	EmitSteal(e domain.StealEvent)
	EmitTransfer(e domain.TransferEvent)
}

// LogSink writes events to a logger.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink that logs every event.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

var _ Sink = (*LogSink)(nil)

func (s *LogSink) EmitInitialize(e domain.InitializeEvent) {
	s.logger.Printf("initialize token=%s minter=%s price=%d next=%d",
		e.Token, e.Minter, e.InitialPrice, e.InitialNextPrice)
}

func (s *LogSink) EmitSteal(e domain.StealEvent) {
	s.logger.Printf("steal token=%s %s→%s paid=%d dev=%d minter=%d holder=%d refund=%d next=%d first=%t",
		e.Token, e.PreviousHolder, e.NewHolder, e.PricePaid,
		e.DevFee, e.MinterFee, e.HolderPayment, e.RefundAmount, e.NextPrice, e.IsFirstSteal)
}

func (s *LogSink) EmitTransfer(e domain.TransferEvent) {
	s.logger.Printf("transfer token=%s %s→%s price=%d", e.Token, e.From, e.To, e.Price)
}

// MultiSink fans events out to several sinks.
type MultiSink []Sink

var _ Sink = (MultiSink)(nil)

func (m MultiSink) EmitInitialize(e domain.InitializeEvent) {
	for _, s := range m {
		s.EmitInitialize(e)
	}
}

func (m MultiSink) EmitSteal(e domain.StealEvent) {
	for _, s := range m {
		s.EmitSteal(e)
	}
}

func (m MultiSink) EmitTransfer(e domain.TransferEvent) {
	for _, s := range m {
		s.EmitTransfer(e)
	}
}
