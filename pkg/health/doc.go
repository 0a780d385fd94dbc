/*
Package health provides connectivity checkers used by plug-in active
objects to probe the external endpoints they depend on (an upstream
websocket peer) independently of the broker/mailbox liveness the
watchdog already covers.

# Checkers

Checker is a small interface — Check(ctx) Result, Type() CheckType —
implemented by TCPChecker, built with a fluent constructor
(NewTCPChecker(addr).WithTimeout(...)).

# Status tracking

Status applies hysteresis over raw Check results: a configurable number
of consecutive failures before a probe is considered unhealthy.
InStartPeriod reports whether a configured start period is still
running; Update itself counts every failure, start period or not.
*/
package health
