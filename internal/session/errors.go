package session

import "errors"

// ErrInvalidTransition is returned when an action is not valid for the current state,
// including any attempt to open the detail page without a product. State is unchanged.
var ErrInvalidTransition = errors.New("invalid transition")
