// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a plain console encoder suited to CI output,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing utilities,
//   - leveled key-value helpers (DebugKV, InfoKV, WarnKV, ErrorKV).
//
// Services accept a context and extract the logger from it, so tests can
// inject an observed logger and assert on the emitted warnings.
package logger
