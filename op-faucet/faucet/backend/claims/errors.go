package claims

import "fmt"

// StoreError is returned for any failure of the underlying storage.
type StoreError struct {
	Op  string
	Key Key
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("claim store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("claim store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
