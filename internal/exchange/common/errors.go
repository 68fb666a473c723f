package common

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork Kind = "network"
	KindStatus  Kind = "status"
	KindDecode  Kind = "decode"
	KindEmpty   Kind = "empty"
	KindStorage Kind = "storage"
)

var (
	// ErrEmptySnapshot is returned by providers that have nothing stored for
	// a product.
	ErrEmptySnapshot = errors.New("no snapshot available")
	// ErrCorruptSnapshot marks a stored snapshot that no longer decodes.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// FetchError is a failed snapshot retrieval. Status is set only for
// KindStatus.
type FetchError struct {
	Kind    Kind
	Product string
	Status  int
	Err     error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("snapshot %s: %s %d: %v", e.Product, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("snapshot %s: %s: %v", e.Product, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the request could succeed.
func (e *FetchError) Temporary() bool {
	switch e.Kind {
	case KindNetwork:
		return true
	case KindStatus:
		return e.Status == 429 || e.Status >= 500
	}
	return false
}

// KindOf returns the kind of a *FetchError in err's chain, or "" if none.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
