package changelog

import (
	"errors"
	"fmt"
)

// Kind identifies an error category. Kinds are compared with errors.Is.
type Kind struct {
	name  string
	usage bool
}

func (k *Kind) Error() string { return k.name }

// Name is the category printed to stderr.
func (k *Kind) Name() string { return k.name }

// Usage reports whether the category is caused by bad input rather than an
// external failure.
func (k *Kind) Usage() bool { return k.usage }

var (
	ErrInvalidCommitCount   = &Kind{name: "InvalidCommitCountError", usage: true}
	ErrRepositoryNotFound   = &Kind{name: "RepositoryNotFoundError"}
	ErrInvalidRepositoryURL = &Kind{name: "InvalidRepositoryURLError", usage: true}
	ErrBranchNotFound       = &Kind{name: "BranchNotFoundError"}
	ErrNoCommitsFound       = &Kind{name: "NoCommitsFoundError"}
	ErrMissingCredential    = &Kind{name: "MissingCredentialError"}
	ErrAuthentication       = &Kind{name: "AuthenticationError"}
	ErrRateLimited          = &Kind{name: "RateLimitedError"}
	ErrUpstreamService      = &Kind{name: "UpstreamServiceError"}
)

// Error carries a Kind, a human readable message and an optional cause.
type Error struct {
	Kind *Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Errorf builds an *Error of the given kind.
func Errorf(kind *Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around cause.
func Wrap(kind *Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or nil.
func KindOf(err error) *Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
