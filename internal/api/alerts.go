package api

import (
	"sync"
	"time"

	"github.com/ggyhrr/gift-code/internal/batch"
)

const alertHistory = 50

// Alert is one user-facing notification emitted by the batch service.
type Alert struct {
	Message  string         `json:"message"`
	Severity batch.Severity `json:"severity"`
	At       time.Time      `json:"at"`
}

// AlertLog keeps the most recent notifications so HTTP clients can poll
// them. Writes never block; the oldest entries fall off.
type AlertLog struct {
	mu     sync.Mutex
	alerts []Alert
}

// NewAlertLog creates an empty alert log.
func NewAlertLog() *AlertLog {
	return &AlertLog{}
}

// Notify records an alert. It satisfies batch.NotifyFunc.
func (l *AlertLog) Notify(message string, severity batch.Severity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = append(l.alerts, Alert{Message: message, Severity: severity, At: time.Now()})
	if len(l.alerts) > alertHistory {
		l.alerts = l.alerts[len(l.alerts)-alertHistory:]
	}
}

// Recent returns the retained alerts, newest last.
func (l *AlertLog) Recent() []Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Alert, len(l.alerts))
	copy(out, l.alerts)
	return out
}
