package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Sampling errors
	ErrProbeUnavailable ErrorCode = "probe_unavailable"
	ErrRateUndefined    ErrorCode = "rate_undefined"
	ErrAggregationFault ErrorCode = "aggregation_fault"
	ErrCommandFailed    ErrorCode = "command_failed"
	ErrParseFailed      ErrorCode = "parse_failed"

	// Server errors
	ErrServerStart    ErrorCode = "server_start_failed"
	ErrServerShutdown ErrorCode = "server_shutdown_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrUnavailable:      "Service unavailable",
	ErrInvalidConfig:    "Invalid configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrReadConfig:       "Failed to read configuration",
	ErrInvalidInterval:  "Invalid interval value",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrProbeUnavailable: "Probe could not produce a value",
	ErrRateUndefined:    "Rate undefined for non-positive elapsed time",
	ErrAggregationFault: "Snapshot aggregation failed",
	ErrCommandFailed:    "External command failed",
	ErrParseFailed:      "Failed to parse sensor output",
	ErrServerStart:      "Failed to start server",
	ErrServerShutdown:   "Failed to shut down server",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
