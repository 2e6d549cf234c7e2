// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// OutputNested indents rules to reflect the source nesting.
	OutputNested OutputStyle = "nested"
	// OutputExpanded writes one declaration per line with every rule at top level.
	OutputExpanded OutputStyle = "expanded"
	// OutputCompact writes every rule on a single line.
	OutputCompact OutputStyle = "compact"
	// OutputCompressed removes all optional whitespace and comments.
	OutputCompressed OutputStyle = "compressed"

	// IndentSpace indents with spaces.
	IndentSpace IndentType = "space"
	// IndentTab indents with tabs.
	IndentTab IndentType = "tab"

	// LinefeedLF terminates lines with "\n".
	LinefeedLF Linefeed = "lf"
	// LinefeedCRLF terminates lines with "\r\n".
	LinefeedCRLF Linefeed = "crlf"
	// LinefeedCR terminates lines with "\r".
	LinefeedCR Linefeed = "cr"
	// LinefeedLFCR terminates lines with "\n\r".
	LinefeedLFCR Linefeed = "lfcr"

	// MaxIndentWidth is the largest accepted IndentWidth.
	MaxIndentWidth = 10
	// DefaultIndentWidth is used when IndentWidth is zero.
	DefaultIndentWidth = 2
	// DefaultPrecision is the number of fractional digits kept in numbers.
	DefaultPrecision = 5
)

var (
	// ErrInvalidOutputStyle is returned when an OutputStyle value is not recognized.
	ErrInvalidOutputStyle = errors.New("invalid output style")
	// ErrInvalidIndentType is returned when an IndentType value is not recognized.
	ErrInvalidIndentType = errors.New("invalid indent type")
	// ErrInvalidLinefeed is returned when a Linefeed value is not recognized.
	ErrInvalidLinefeed = errors.New("invalid linefeed")
	// ErrInvalidOptions is the sentinel error wrapped by InvalidOptionsError.
	ErrInvalidOptions = errors.New("invalid compiler options")
)

type (
	// OutputStyle selects the CSS formatting.
	OutputStyle string

	// InvalidOutputStyleError is returned when an OutputStyle value is not recognized.
	// It wraps ErrInvalidOutputStyle for errors.Is() compatibility.
	InvalidOutputStyleError struct {
		Value OutputStyle
	}

	// IndentType selects the indentation character.
	IndentType string

	// InvalidIndentTypeError is returned when an IndentType value is not recognized.
	InvalidIndentTypeError struct {
		Value IndentType
	}

	// Linefeed selects the line terminator.
	Linefeed string

	// InvalidLinefeedError is returned when a Linefeed value is not recognized.
	InvalidLinefeedError struct {
		Value Linefeed
	}

	// InvalidOptionsError collects field-level validation errors of Options.
	InvalidOptionsError struct {
		FieldErrors []error
	}

	// Options are the compiler settings. The zero value is valid and means
	// nested output, two-space indentation, "\n" line endings and the default
	// precision.
	Options struct {
		OutputStyle    OutputStyle `json:"outputStyle,omitempty" yaml:"outputStyle,omitempty" toml:"outputStyle,omitempty" mapstructure:"outputstyle"`
		IndentType     IndentType  `json:"indentType,omitempty" yaml:"indentType,omitempty" toml:"indentType,omitempty" mapstructure:"indenttype"`
		IndentWidth    int         `json:"indentWidth,omitempty" yaml:"indentWidth,omitempty" toml:"indentWidth,omitempty" mapstructure:"indentwidth"`
		Linefeed       Linefeed    `json:"linefeed,omitempty" yaml:"linefeed,omitempty" toml:"linefeed,omitempty" mapstructure:"linefeed"`
		Precision      int         `json:"precision,omitempty" yaml:"precision,omitempty" toml:"precision,omitempty" mapstructure:"precision"`
		SourceComments bool        `json:"sourceComments,omitempty" yaml:"sourceComments,omitempty" toml:"sourceComments,omitempty" mapstructure:"sourcecomments"`
		// SourceMap requests a source map. Compilers may ignore it.
		SourceMap bool `json:"sourceMap,omitempty" yaml:"sourceMap,omitempty" toml:"sourceMap,omitempty" mapstructure:"sourcemap"`
	}
)

// OutputStyles returns every recognized OutputStyle.
func OutputStyles() []OutputStyle {
	return []OutputStyle{OutputNested, OutputExpanded, OutputCompact, OutputCompressed}
}

// String returns the string representation of the OutputStyle.
func (s OutputStyle) String() string { return string(s) }

// IsValid returns whether the OutputStyle is recognized. The zero value is
// valid and means OutputNested.
func (s OutputStyle) IsValid() (bool, []error) {
	switch s {
	case "", OutputNested, OutputExpanded, OutputCompact, OutputCompressed:
		return true, nil
	default:
		return false, []error{&InvalidOutputStyleError{Value: s}}
	}
}

// Error implements the error interface for InvalidOutputStyleError.
func (e *InvalidOutputStyleError) Error() string {
	return fmt.Sprintf("invalid output style %q (valid: nested, expanded, compact, compressed)", e.Value)
}

// Unwrap returns ErrInvalidOutputStyle for errors.Is() compatibility.
func (e *InvalidOutputStyleError) Unwrap() error { return ErrInvalidOutputStyle }

// String returns the string representation of the IndentType.
func (t IndentType) String() string { return string(t) }

// IsValid returns whether the IndentType is recognized. The zero value means IndentSpace.
func (t IndentType) IsValid() (bool, []error) {
	switch t {
	case "", IndentSpace, IndentTab:
		return true, nil
	default:
		return false, []error{&InvalidIndentTypeError{Value: t}}
	}
}

// Error implements the error interface for InvalidIndentTypeError.
func (e *InvalidIndentTypeError) Error() string {
	return fmt.Sprintf("invalid indent type %q (valid: space, tab)", e.Value)
}

// Unwrap returns ErrInvalidIndentType for errors.Is() compatibility.
func (e *InvalidIndentTypeError) Unwrap() error { return ErrInvalidIndentType }

// String returns the string representation of the Linefeed.
func (l Linefeed) String() string { return string(l) }

// IsValid returns whether the Linefeed is recognized. The zero value means LinefeedLF.
func (l Linefeed) IsValid() (bool, []error) {
	switch l {
	case "", LinefeedLF, LinefeedCRLF, LinefeedCR, LinefeedLFCR:
		return true, nil
	default:
		return false, []error{&InvalidLinefeedError{Value: l}}
	}
}

// Sequence returns the characters that terminate a line.
func (l Linefeed) Sequence() string {
	switch l {
	case LinefeedCRLF:
		return "\r\n"
	case LinefeedCR:
		return "\r"
	case LinefeedLFCR:
		return "\n\r"
	default:
		return "\n"
	}
}

// Error implements the error interface for InvalidLinefeedError.
func (e *InvalidLinefeedError) Error() string {
	return fmt.Sprintf("invalid linefeed %q (valid: cr, crlf, lf, lfcr)", e.Value)
}

// Unwrap returns ErrInvalidLinefeed for errors.Is() compatibility.
func (e *InvalidLinefeedError) Unwrap() error { return ErrInvalidLinefeed }

// IsValid returns whether all option fields are valid.
func (o Options) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := o.OutputStyle.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := o.IndentType.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := o.Linefeed.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if o.IndentWidth < 0 || o.IndentWidth > MaxIndentWidth {
		errs = append(errs, fmt.Errorf("indent width %d out of range 0-%d", o.IndentWidth, MaxIndentWidth))
	}
	if o.Precision < 0 {
		errs = append(errs, fmt.Errorf("precision %d must not be negative", o.Precision))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidOptionsError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidOptionsError.
func (e *InvalidOptionsError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid compiler options: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidOptions for errors.Is() compatibility.
func (e *InvalidOptionsError) Unwrap() error { return ErrInvalidOptions }

// Indent returns one level of indentation.
func (o Options) Indent() string {
	width := o.IndentWidth
	if width == 0 {
		width = DefaultIndentWidth
	}
	if o.IndentType == IndentTab {
		return strings.Repeat("\t", width)
	}
	return strings.Repeat(" ", width)
}

// Style returns the effective output style.
func (o Options) Style() OutputStyle {
	if o.OutputStyle == "" {
		return OutputNested
	}
	return o.OutputStyle
}

// EffectivePrecision returns the effective numeric precision.
func (o Options) EffectivePrecision() int {
	if o.Precision == 0 {
		return DefaultPrecision
	}
	return o.Precision
}
