package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can decide whether to abort the
// run or move on to the next submission.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindListener
	KindProtocolParse
	KindStateMismatch
	KindProvider
	KindStream
	KindRender
	KindAlert
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindConfig:        "config",
	KindListener:      "listener",
	KindProtocolParse: "protocol parse",
	KindStateMismatch: "state mismatch",
	KindProvider:      "provider",
	KindStream:        "stream",
	KindRender:        "render",
	KindAlert:         "alert",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fatal reports whether errors of this kind end the process. Render and
// alert failures are confined to a single submission.
func (k Kind) Fatal() bool {
	switch k {
	case KindRender, KindAlert:
		return false
	}
	return true
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s error: %s", e.Kind, e.Op)
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, which lets the sentinels below
// work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrConfig        = &Error{Kind: KindConfig}
	ErrListener      = &Error{Kind: KindListener}
	ErrProtocolParse = &Error{Kind: KindProtocolParse}
	ErrStateMismatch = &Error{Kind: KindStateMismatch}
	ErrProvider      = &Error{Kind: KindProvider}
	ErrStream        = &Error{Kind: KindStream}
	ErrRender        = &Error{Kind: KindRender}
	ErrAlert         = &Error{Kind: KindAlert}
)

// E builds a classified error.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
