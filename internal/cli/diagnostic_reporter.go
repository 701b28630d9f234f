package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// SetOutput redirects the reports
func (r *DiagnosticReporter) SetOutput(out io.Writer) {
	r.out = out
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string) {
	color.New(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError reports err, one block per typed error it contains
func (r *DiagnosticReporter) ReportError(err error) {
	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		fmt.Fprintf(r.out, "\n%d errors\n", multi.Count())
		for _, e := range multi.Errors {
			r.report(e)
		}
		return
	}
	r.report(err)
}

func (r *DiagnosticReporter) report(err error) {
	fmt.Fprintf(r.out, "\n")

	var typed errors.ReversalError
	if !stderrors.As(err, &typed) {
		r.reportBasicError(err)
		return
	}

	r.printErrorHeader(typed.ErrorCode())
	fmt.Fprintf(r.out, "Message: %s\n\n", r.message(typed))

	if loc := typed.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc)
	}
	if ctx := typed.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if hints := r.hints(typed); len(hints) > 0 {
		r.printSuggestions(hints)
	}
	r.printAdditionalHelp(typed.ErrorCode())

	if r.verbose && typed.Unwrap() != nil {
		r.printCauseChain(typed.Unwrap())
	}
}

// message is the error text without the location prefix, which gets its
// own line
func (r *DiagnosticReporter) message(e errors.ReversalError) string {
	msg := e.Error()
	if loc := e.Location(); !loc.IsEmpty() {
		msg = strings.TrimPrefix(msg, loc.String()+": ")
	}
	return msg
}

// hints merges the suggestions of the typed error with hints attached
// anywhere in its cause chain
func (r *DiagnosticReporter) hints(e errors.ReversalError) []string {
	seen := make(map[string]bool)
	var hints []string
	for _, h := range append(e.Suggestions(), errors.GetAllHints(e.Unwrap())...) {
		if !seen[h] {
			seen[h] = true
			hints = append(hints, h)
		}
	}
	return hints
}

func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.out, "Message: %s\n", err.Error())
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(r.out, "Hint: %s\n", hint)
	}
}

func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	var title string
	switch code {
	case errors.SyntaxErrorCode:
		title = "Syntax Error"
	case errors.ValidationErrorCode:
		title = "Validation Error"
	case errors.SchemaErrorCode:
		title = "Annotation Schema Error"
	case errors.ConfigurationMissingCode:
		title = "Configuration Missing"
	case errors.UnsupportedSignatureCode:
		title = "Unsupported Signature"
	case errors.EmissionFailedCode:
		title = "Emission Failed"
	case errors.TemplateErrorCode:
		title = "Template Error"
	case errors.FileSystemErrorCode:
		title = "File System Error"
	default:
		title = "Unknown Error"
	}
	color.New(color.FgRed, color.Bold).Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))
}

// printContext prints the context map, the type and method first
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	important := []string{"type", "method", "profile", "companion"}
	printed := make(map[string]bool)
	for _, key := range important {
		if value, ok := context[key]; ok {
			fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), value)
			printed[key] = true
		}
	}

	rest := make([]string, 0, len(context))
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey turns snake_case keys into Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printAdditionalHelp(code errors.ErrorCode) {
	switch code {
	case errors.ConfigurationMissingCode:
		fmt.Fprintf(r.out, "Configuration lookup:\n")
		fmt.Fprintf(r.out, "  - The type, an enclosing type or the file must carry @SuspendReversal\n")
		fmt.Fprintf(r.out, "  - An annotation class annotated with @SuspendReversal works as an alias\n\n")
	case errors.UnsupportedSignatureCode:
		fmt.Fprintf(r.out, "Unsupported signatures:\n")
		fmt.Fprintf(r.out, "  - Rename the generated function with @SuspendReversal.JBlocking, .JAsync or .JsAsync\n")
		fmt.Fprintf(r.out, "  - Run with --no-strict to skip such functions instead of failing the type\n\n")
	}
}

func (r *DiagnosticReporter) printCauseChain(cause error) {
	fmt.Fprintf(r.out, "Cause chain:\n")
	level := 1
	for err := cause; err != nil; err = stderrors.Unwrap(err) {
		fmt.Fprintf(r.out, "  %d. %s\n", level, err.Error())
		level++
	}
	fmt.Fprintf(r.out, "\n")
}

// ReportSummary prints the outcome of a generation pass
func (r *DiagnosticReporter) ReportSummary(summary GenerationSummary) {
	fmt.Fprintf(r.out, "\nTypes processed:     %d\n", summary.TypesProcessed)
	fmt.Fprintf(r.out, "Companions emitted:  %d\n", summary.CompanionsEmitted)
	if summary.Skipped > 0 {
		fmt.Fprintf(r.out, "Functions skipped:   %d\n", summary.Skipped)
	}
	if summary.TypesFailed > 0 {
		color.New(color.FgRed).Fprintf(r.out, "Types failed:        %d\n", summary.TypesFailed)
	}
}

// GenerationSummary contains information about one generation pass
type GenerationSummary struct {
	FilesParsed       int
	TypesProcessed    int
	TypesFailed       int
	CompanionsEmitted int
	Skipped           int
	Warnings          []string
}
