/*
Package log provides structured logging for RTEF using zerolog.

The log package wraps zerolog to give every long-lived goroutine in the
runtime — broker pumps, timer pumps, active-object workers, the watchdog —
a component-scoped logger with consistent fields and level filtering.

# Usage

Initializing the logger once at process start:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Component loggers, one per subsystem:

	brokerLog := log.WithComponent("broker")
	brokerLog.Info().Str("class", "primary").Msg("pump started")

	objLog := log.WithObject("dbworker-1")
	objLog.Warn().Uint32("signal", sig).Msg("dispatch: no transition matched")

# Design

A single global zerolog.Logger is configured by Init and never
reconfigured afterward; everything else derives a child logger via
With(). This mirrors how the rest of the runtime avoids passing a logger
down every call chain — goroutines fetch a component logger once at
construction and keep it for their lifetime.
*/
package log
