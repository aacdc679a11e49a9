package util

import (
	"fmt"
	"strings"
)

// RelstampError is a structured error with context and suggestions
type RelstampError struct {
	Title       string   // Short error title
	Message     string   // Detailed message
	Context     string   // What was being attempted
	Causes      []string // Possible causes
	Suggestions []string // Actionable suggestions with commands
	Err         error    // Wrapped error
}

func (e *RelstampError) Error() string {
	return e.Title
}

func (e *RelstampError) Unwrap() error {
	return e.Err
}

// Format returns a nicely formatted error message
func (e *RelstampError) Format() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Title))

	if e.Message != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Message))
	}
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Context))
	}

	if len(e.Causes) > 0 {
		sb.WriteString("\n  Possible causes:\n")
		for _, cause := range e.Causes {
			sb.WriteString(fmt.Sprintf("    • %s\n", cause))
		}
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n  Try:\n")
		for _, sug := range e.Suggestions {
			sb.WriteString(fmt.Sprintf("    $ %s\n", sug))
		}
	}

	return sb.String()
}

// NewError creates a new RelstampError
func NewError(title string) *RelstampError {
	return &RelstampError{Title: title}
}

// WithMessage adds a detailed message
func (e *RelstampError) WithMessage(msg string) *RelstampError {
	e.Message = msg
	return e
}

// WithContext adds context about what was being attempted
func (e *RelstampError) WithContext(ctx string) *RelstampError {
	e.Context = ctx
	return e
}

// WithCause adds a possible cause
func (e *RelstampError) WithCause(cause string) *RelstampError {
	e.Causes = append(e.Causes, cause)
	return e
}

// WithCauses adds multiple possible causes
func (e *RelstampError) WithCauses(causes ...string) *RelstampError {
	e.Causes = append(e.Causes, causes...)
	return e
}

// WithSuggestion adds an actionable suggestion
func (e *RelstampError) WithSuggestion(sug string) *RelstampError {
	e.Suggestions = append(e.Suggestions, sug)
	return e
}

// WithSuggestions adds multiple suggestions
func (e *RelstampError) WithSuggestions(sugs ...string) *RelstampError {
	e.Suggestions = append(e.Suggestions, sugs...)
	return e
}

// Wrap wraps an underlying error
func (e *RelstampError) Wrap(err error) *RelstampError {
	e.Err = err
	return e
}

// ══════════════════════════════════════════════════════════════════════════
// Pre-built error constructors for common cases
// ══════════════════════════════════════════════════════════════════════════

// InvalidTimestampError reports text that no configured layout accepts
func InvalidTimestampError(text string, err error) *RelstampError {
	return NewError("Cannot parse timestamp").
		WithContext(fmt.Sprintf("%q", text)).
		WithCauses(
			"The text is not in any configured layout",
			"The layout needs a zone the text does not carry",
		).
		WithSuggestions(
			"relstamp since 2024-08-17T16:02:23Z   # RFC 3339 always works",
			"relstamp config --path                # Add layouts under [parse]",
		).
		Wrap(err)
}

// FutureTimestampError reports a timestamp later than the reference time
func FutureTimestampError(text string, err error) *RelstampError {
	return NewError("Timestamp is in the future").
		WithContext(fmt.Sprintf("%q", text)).
		WithCauses(
			"The text carries no zone and parse.timezone is wrong",
			"The --now reference time is earlier than the timestamp",
		).
		WithSuggestions(
			"relstamp config parse.timezone UTC",
		).
		Wrap(err)
}

// ConfigLoadError reports an unreadable or malformed config file
func ConfigLoadError(path string, err error) *RelstampError {
	return NewError("Cannot load config").
		WithContext(path).
		WithMessage(err.Error()).
		WithSuggestions(
			"relstamp config --list   # Show effective settings",
			"relstamp --config /dev/null <command>   # Run with defaults",
		).
		Wrap(err)
}

// InvalidClassError reports a marker class that is not a usable CSS class
func InvalidClassError(class string, err error) *RelstampError {
	return NewError(fmt.Sprintf("Invalid marker class '%s'", class)).
		WithMessage("The marker class must be a single CSS class name").
		WithSuggestions(
			"relstamp annotate --class timestamp page.html",
		).
		Wrap(err)
}

// AnnotationFailedError reports a pass aborted under the fail policy
func AnnotationFailedError(source string, err error) *RelstampError {
	return NewError("Annotation aborted").
		WithContext(source).
		WithMessage(err.Error()).
		WithSuggestions(
			"relstamp annotate --on-error skip <file>   # Leave bad elements untouched",
		).
		Wrap(err)
}

// MissingArgumentError returns an error for missing required argument
func MissingArgumentError(argName, example string) *RelstampError {
	e := NewError(fmt.Sprintf("Missing required argument: <%s>", argName))
	if example != "" {
		e.WithSuggestion(example)
	}
	return e
}

// TooManyArgumentsError returns an error for too many arguments
func TooManyArgumentsError(expected int, got int) *RelstampError {
	return NewError(fmt.Sprintf("Too many arguments: expected %d, got %d", expected, got))
}
