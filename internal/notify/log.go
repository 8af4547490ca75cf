package notify

import (
    "context"

    "go.uber.org/zap"
)

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct {
    Log *zap.Logger
}

// Send implements service.Notifier.
func (n LogNotifier) Send(_ context.Context, to, subject, body string) error {
    if n.Log != nil {
        n.Log.Info("notification", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
    }
    return nil
}
