package health

import "errors"

// ErrCheckFailed is returned by Err when one or more checks failed.
var ErrCheckFailed = errors.New("health: check failed")

// Err returns ErrCheckFailed if the response is unhealthy.
func (r *Response) Err() error {
	if r.Status == StatusUnhealthy {
		return ErrCheckFailed
	}
	return nil
}
