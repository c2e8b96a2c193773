package providers

import (
	"errors"
	"fmt"
)

// ProviderError is a failed call to the platform webhook. Code is one of the
// constants.ErrCode* values.
type ProviderError struct {
	Code    string
	Message string
	Details string
	Status  int
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is a ProviderError carrying code.
func HasCode(err error, code string) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}
