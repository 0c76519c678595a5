package mq

import (
	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// zerologAdapter 把 watermill 日志转到 zerolog. watermill 的 Info 偏啰嗦，降为 Debug.
type zerologAdapter struct {
	l zerolog.Logger
}

// NewLoggerAdapter 包装 zerolog logger.
func NewLoggerAdapter(l zerolog.Logger) watermill.LoggerAdapter {
	return zerologAdapter{l: l}
}

func (z zerologAdapter) log(ev *zerolog.Event, msg string, fields watermill.LogFields) {
	ev.Fields(map[string]any(fields)).Msg(msg)
}

func (z zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	z.log(z.l.Error().Err(err), msg, fields)
}

func (z zerologAdapter) Info(msg string, fields watermill.LogFields) {
	z.log(z.l.Debug(), msg, fields)
}

func (z zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	z.log(z.l.Debug(), msg, fields)
}

func (z zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	z.log(z.l.Trace(), msg, fields)
}

func (z zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return zerologAdapter{l: z.l.With().Fields(map[string]any(fields)).Logger()}
}
