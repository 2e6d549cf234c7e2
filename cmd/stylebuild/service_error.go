// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/invowk/stylebuild/internal/compiler"
	"github.com/invowk/stylebuild/internal/dag"
	"github.com/invowk/stylebuild/internal/issue"
	"github.com/invowk/stylebuild/internal/resolve"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before the issue catalog entry.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a failure to an issue catalog ID and a styled message.
// An issue attached to an ActionableError wins over the error kind.
func classifyError(err error, verbose bool) *ServiceError {
	var issueID issue.Id

	var ae *issue.ActionableError
	switch {
	case errors.As(err, &ae) && ae.IssueID != 0:
		issueID = ae.IssueID
	case errors.Is(err, resolve.ErrImportAmbiguous):
		issueID = issue.ImportAmbiguousId
	case errors.Is(err, resolve.ErrImportNotFound):
		issueID = issue.ImportNotFoundId
	case errors.Is(err, fs.ErrPermission):
		issueID = issue.PermissionDeniedId
	case errors.Is(err, dag.ErrCycle):
		issueID = issue.ImportCycleId
	case errors.Is(err, compiler.ErrCompile):
		issueID = issue.CompileFailedId
	}

	return newServiceError(err, issueID,
		fmt.Sprintf("%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose)))
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// list their suggestions and, in verbose mode, their chain of causes.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderServiceError prints the styled message followed by the issue help
// section, if any.
func renderServiceError(stderr io.Writer, logger *log.Logger, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			logger.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}
