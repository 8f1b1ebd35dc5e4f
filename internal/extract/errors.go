package extract

import "errors"

// ErrContentTooShort is returned when the cleaned main text of a page is
// shorter than MinContentLength characters.
var ErrContentTooShort = errors.New("content too short")
