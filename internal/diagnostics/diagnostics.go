package diagnostics

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/raffopazzo/depc-sub002/internal/token"
)

type ErrorCode string

const (
	// Lexing and parsing.
	ErrP001 ErrorCode = "P001" // illegal token
	ErrP002 ErrorCode = "P002" // unexpected token
	ErrP003 ErrorCode = "P003" // malformed declaration

	// Typechecking.
	ErrT001 ErrorCode = "T001" // unknown name
	ErrT002 ErrorCode = "T002" // type mismatch
	ErrT003 ErrorCode = "T003" // no unique type, annotation needed
	ErrT004 ErrorCode = "T004" // quantity violation
	ErrT005 ErrorCode = "T005" // redefinition or incompatible declaration
	ErrT006 ErrorCode = "T006" // missing return
	ErrT007 ErrorCode = "T007" // proof search failed
	ErrT008 ErrorCode = "T008" // invalid expression for its position
	ErrT009 ErrorCode = "T009" // mutability violation
	ErrT010 ErrorCode = "T010" // literal out of range

	// Term algebra failures, usually nested inside a T002.
	ErrE001 ErrorCode = "E001" // not alpha-equivalent
	ErrE002 ErrorCode = "E002" // no unification

	ErrC001 ErrorCode = "C001" // configuration or input loading
)

// Error is a diagnostic with an optional location and a chain of reasons
// explaining how the failure came about.
type Error struct {
	Code    ErrorCode
	Pos     token.Pos
	File    string
	Message string
	Reasons []*Error
}

func NewError(code ErrorCode, pos token.Pos, message string) *Error {
	return &Error{Code: code, Pos: pos, Message: message}
}

func Errorf(code ErrorCode, pos token.Pos, format string, args ...interface{}) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a new error with the given reasons attached.
func Wrap(code ErrorCode, pos token.Pos, message string, reasons ...*Error) *Error {
	e := &Error{Code: code, Pos: pos, Message: message}
	for _, r := range reasons {
		if r != nil {
			e.Reasons = append(e.Reasons, r)
		}
	}
	return e
}

// WithReason appends a reason and returns the receiver.
func (e *Error) WithReason(r *Error) *Error {
	if r != nil {
		e.Reasons = append(e.Reasons, r)
	}
	return e
}

// Error renders the whole reason tree, one reason per indented line.
func (e *Error) Error() string {
	var b strings.Builder
	e.write(&b, 0)
	return b.String()
}

// Headline renders only the top-level message with its location.
func (e *Error) Headline() string {
	var b strings.Builder
	e.writeHeadline(&b)
	return b.String()
}

func (e *Error) writeHeadline(b *strings.Builder) {
	loc := e.location()
	if loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	if e.Code != "" {
		fmt.Fprintf(b, "[%s] ", e.Code)
	}
	b.WriteString(e.Message)
}

func (e *Error) location() string {
	if !e.Pos.IsValid() {
		return e.File
	}
	p := e.Pos
	if p.File == "" {
		p.File = e.File
	}
	return p.String()
}

func (e *Error) write(b *strings.Builder, depth int) {
	if depth == 0 {
		e.writeHeadline(b)
	} else {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("reason: ")
		b.WriteString(e.Message)
	}
	for _, r := range e.Reasons {
		b.WriteByte('\n')
		r.write(b, depth+1)
	}
}

// Contains reports whether msg appears anywhere in the reason tree.
func (e *Error) Contains(msg string) bool {
	if strings.Contains(e.Message, msg) {
		return true
	}
	for _, r := range e.Reasons {
		if r.Contains(msg) {
			return true
		}
	}
	return false
}

// AsError returns err as a diagnostic, wrapping foreign errors under code.
func AsError(err error, code ErrorCode, pos token.Pos) *Error {
	if err == nil {
		return nil
	}
	var d *Error
	if errors.As(err, &d) {
		return d
	}
	return NewError(code, pos, err.Error())
}

// SetFile sets the file on e if it has none yet.
func (e *Error) SetFile(file string) {
	if e.File == "" {
		e.File = file
	}
}

// Sort orders errors by file, line and column.
func Sort(errs []*Error) {
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].File != errs[j].File {
			return errs[i].File < errs[j].File
		}
		if errs[i].Pos.Line != errs[j].Pos.Line {
			return errs[i].Pos.Line < errs[j].Pos.Line
		}
		return errs[i].Pos.Column < errs[j].Pos.Column
	})
}
