package logger

import (
	"go.uber.org/zap"
)

// New builds the process logger. Every entry carries the service name.
func New(service string, debug bool) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", service)), nil
}
