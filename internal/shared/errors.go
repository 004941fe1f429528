package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Credential errors
	ErrCredentialsUnavailable = fmt.Errorf("credentials unavailable")

	// Aggregation errors, fatal to the whole run
	ErrSourceUnavailable = fmt.Errorf("source unavailable")
	ErrMissingColumn     = fmt.Errorf("missing column")
	ErrTemplateNotFound  = fmt.Errorf("template not found")
	ErrTemplateSyntax    = fmt.Errorf("template syntax error")
	ErrTemplateRender    = fmt.Errorf("template render failed")

	// Destination errors, recovered per document
	ErrWriteFailed = fmt.Errorf("write failed")
	ErrPartialRun  = fmt.Errorf("some documents were not updated")

	// Lifecycle errors
	ErrAlreadyStarted = fmt.Errorf("schedule already started")
	ErrNotStarted     = fmt.Errorf("schedule not started")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
