package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/everstacklabs/blocksmith/internal/catalog"
	"github.com/everstacklabs/blocksmith/internal/naming"
	"github.com/everstacklabs/blocksmith/internal/roles"
)

// Severity classifies validation issues.
type Severity int

const (
	SeverityError   Severity = iota // Blocks writing the block
	SeverityWarning                 // Reported but doesn't block
)

// Issue represents a single validation problem.
type Issue struct {
	Severity Severity
	Block    string
	Field    string
	Message  string
}

func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s: %s", sev, i.Block, i.Field, i.Message)
}

// Result holds all validation issues.
type Result struct {
	Issues []Issue
}

// HasErrors returns true if there are any blocking errors.
func (r *Result) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (r *Result) Errors() []Issue {
	var errs []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			errs = append(errs, i)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (r *Result) Warnings() []Issue {
	var warns []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			warns = append(warns, i)
		}
	}
	return warns
}

func (r *Result) add(sev Severity, block, field, msg string) {
	r.Issues = append(r.Issues, Issue{Severity: sev, Block: block, Field: field, Message: msg})
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateBlock checks a block against the fixed schema. filename labels the
// issues and is not checked here.
func ValidateBlock(b *catalog.Block, filename string) *Result {
	r := &Result{}
	if b == nil {
		r.add(SeverityError, filename, "block", "block is empty")
		return r
	}

	if err := structValidator.Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			r.add(SeverityError, filename, "block", err.Error())
			return r
		}
		for _, fe := range verrs {
			r.add(SeverityError, filename, fieldPath(fe), describe(fe))
		}
	}

	if len(b.Models) > 1 {
		r.add(SeverityWarning, filename, "models", fmt.Sprintf("expected one model entry, got %d", len(b.Models)))
	}

	for i, m := range b.Models {
		field := fmt.Sprintf("models[%d].roles", i)
		for _, role := range m.Roles {
			if !roles.Known(role) {
				r.add(SeverityWarning, filename, field, fmt.Sprintf("unknown role %q", role))
			}
		}
		if !sort.StringsAreSorted(m.Roles) {
			r.add(SeverityWarning, filename, field, "roles are not in canonical order")
		}
	}

	return r
}

// fieldPath strips the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is empty"
	case "eq":
		return fmt.Sprintf("expected %q, got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// ValidateCatalog validates every block in an output directory, including
// the filename convention and files that did not parse.
func ValidateCatalog(cat *catalog.Catalog) *Result {
	r := &Result{}

	invalid := make([]string, 0, len(cat.Invalid))
	for name := range cat.Invalid {
		invalid = append(invalid, name)
	}
	sort.Strings(invalid)
	for _, name := range invalid {
		r.add(SeverityError, name, "file", cat.Invalid[name].Error())
	}

	for _, filename := range cat.Filenames() {
		b := cat.Blocks[filename]
		r.Issues = append(r.Issues, ValidateBlock(b, filename).Issues...)

		if b.Name != "" {
			if want := naming.Filename(b.Name); want != filename {
				r.add(SeverityError, filename, "name",
					fmt.Sprintf("filename %q does not match name %q (expected %q)", filename, b.Name, want))
			}
		}
	}
	return r
}

// FormatResult formats validation results for display.
func FormatResult(r *Result) string {
	if len(r.Issues) == 0 {
		return "Validation passed: no issues found."
	}

	var b strings.Builder
	errs := r.Errors()
	warnings := r.Warnings()

	if len(errs) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	if len(warnings) > 0 {
		fmt.Fprintf(&b, "Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}

	return b.String()
}
