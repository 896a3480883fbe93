package flow

import (
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

// Notifier is where the flows send user-visible status: banners, toasts,
// whatever the frontend renders them as.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// LogNotifier reports through the shared loggers; the CLI uses it as-is.
type LogNotifier struct{}

func (LogNotifier) Info(msg string)    { utils.InfoLogger.Info(msg) }
func (LogNotifier) Success(msg string) { utils.InfoLogger.Info(msg) }
func (LogNotifier) Error(msg string)   { utils.ErrorLogger.Error(msg) }

type nopNotifier struct{}

func (nopNotifier) Info(string)    {}
func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
