package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Status int32

const (
	Open       Status = 0
	Committing Status = 1
	Committed  Status = 2
	Aborted    Status = 3
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Committing:
		return "committing"
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	}

	return fmt.Sprintf("status(%d)", int32(s))
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "open":
		return Open, nil
	case "committing":
		return Committing, nil
	case "committed":
		return Committed, nil
	case "aborted":
		return Aborted, nil
	}

	return Open, errors.Errorf("unknown transaction status %q", s)
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == Committed || s == Aborted
}

type Entry struct {
	TxID  string `json:"tx_id,omitempty"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Result is the outcome of one atomic execution.
type Result struct {
	TxID   string
	Status Status
	Writes int
	Reason error
}

func (r Result) Committed() bool {
	return r.Status == Committed
}

// Err returns nil for a committed transaction and an *AbortedError otherwise.
func (r Result) Err() error {
	if r.Committed() {
		return nil
	}

	return &AbortedError{TxID: r.TxID, Reason: r.Reason}
}

type NotFoundError struct {
	Key string
}

func (n NotFoundError) Error() string {
	if n.Key == "" {
		return "Data not found!"
	}

	return fmt.Sprintf("Data not found for key %q", n.Key)
}

// InvalidValueError is returned when a value cannot be serialized into the
// store's string value domain.
type InvalidValueError struct {
	Key string
	Err error
}

func (i InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for key %q: %v", i.Key, i.Err)
}

func (i InvalidValueError) Unwrap() error {
	return i.Err
}

// ScriptFaultError wraps a failure raised by caller logic.
type ScriptFaultError struct {
	Err error
}

func (s ScriptFaultError) Error() string {
	return fmt.Sprintf("script fault: %v", s.Err)
}

func (s ScriptFaultError) Unwrap() error {
	return s.Err
}

type AbortedError struct {
	TxID   string
	Reason error
}

func (a AbortedError) Error() string {
	if a.Reason == nil {
		return fmt.Sprintf("Transaction %s was aborted", a.TxID)
	}

	return fmt.Sprintf("Transaction %s was aborted: %v", a.TxID, a.Reason)
}

func (a AbortedError) Unwrap() error {
	return a.Reason
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInvalidValue(err error) bool {
	var iv *InvalidValueError
	return errors.As(err, &iv)
}

func IsScriptFault(err error) bool {
	var sf *ScriptFaultError
	return errors.As(err, &sf)
}
