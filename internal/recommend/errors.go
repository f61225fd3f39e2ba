package recommend

import "errors"

// ErrInvalidProfile is returned by Profile.Validate.
var ErrInvalidProfile = errors.New("recommend: invalid preference profile")
