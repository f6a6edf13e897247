package notify

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// LogSink пишет уведомления в лог.
type LogSink struct {
	logger *log.Entry
}

// NewLogSink создаёт sink поверх logger. При nil используется logger по умолчанию.
func NewLogSink(logger *log.Entry) *LogSink {
	if logger == nil {
		logger = log.WithField("component", "notify")
	}
	return &LogSink{logger: logger}
}

// Notify логирует отформатированное уведомление.
func (s *LogSink) Notify(event domain.Event) {
	msg := Format(event)
	s.logger.WithFields(log.Fields{
		"kind":       event.Kind,
		"session":    event.Session,
		"product_id": event.ProductID,
		"quantity":   event.Quantity,
	}).Infof("%s: %s", msg.Title, msg.Description)
}

// Fanout рассылает событие всем получателям по порядку.
type Fanout []domain.NotificationSink

// NewFanout отбрасывает nil-получателей.
func NewFanout(sinks ...domain.NotificationSink) Fanout {
	out := make(Fanout, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return out
}

// Notify передаёт событие каждому получателю.
func (f Fanout) Notify(event domain.Event) {
	for _, sink := range f {
		sink.Notify(event)
	}
}

var (
	_ domain.NotificationSink = (*LogSink)(nil)
	_ domain.NotificationSink = Fanout(nil)
)
