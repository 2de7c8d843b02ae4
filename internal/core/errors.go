package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Provider errors
	ErrMetricsUnavailable = &Error{Code: "METRICS_UNAVAILABLE", Message: "failed to get financial data"}
	ErrPriceUnavailable   = &Error{Code: "PRICE_UNAVAILABLE", Message: "failed to get price data"}
	ErrAnalystUnavailable = &Error{Code: "ANALYST_UNAVAILABLE", Message: "professional analyst data unavailable"}
	ErrProviderFailed     = &Error{Code: "PROVIDER_FAILED", Message: "data provider request failed"}
	ErrTickerNotFound     = &Error{Code: "TICKER_NOT_FOUND", Message: "ticker not found"}

	// Analyzer errors
	ErrAnalyzerFailed  = &Error{Code: "ANALYZER_FAILED", Message: "analyzer failed"}
	ErrAnalyzerTimeout = &Error{Code: "ANALYZER_TIMEOUT", Message: "analyzer timed out"}

	// Storage errors
	ErrAnalysisNotFound = &Error{Code: "ANALYSIS_NOT_FOUND", Message: "analysis not found"}
	ErrStorageFailed    = &Error{Code: "STORAGE_FAILED", Message: "storage operation failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// LLM errors
	ErrLLMFailed  = &Error{Code: "LLM_FAILED", Message: "LLM request failed"}
	ErrLLMTimeout = &Error{Code: "LLM_TIMEOUT", Message: "LLM request timeout"}

	// Job errors
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}

	// API errors
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid api key"}
)
