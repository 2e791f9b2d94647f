package imagegen

import (
	"errors"
	"fmt"
)

// ErrClientClosed is returned by Generate after Close.
var ErrClientClosed = errors.New("imagegen: client closed")

// StatusError 表示上游返回了非 200 状态码。
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("imagegen: upstream returned status %d", e.StatusCode)
}

// AsStatusError reports whether err carries an upstream status code.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
