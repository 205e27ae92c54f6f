package notify

import "go.uber.org/zap"

// Notifier receives user-visible notifications (the toast analog). The UI
// layer supplies its own implementation; the default logs through zap.
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	Logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Success(msg string) { n.Logger.Info("notify", zap.String("success", msg)) }
func (n *LogNotifier) Info(msg string)    { n.Logger.Info("notify", zap.String("info", msg)) }
func (n *LogNotifier) Error(msg string)   { n.Logger.Warn("notify", zap.String("error", msg)) }
