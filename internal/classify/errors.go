package classify

import "errors"

// ErrClassification is returned when the model call fails or its answer
// cannot be turned into a classification.
var ErrClassification = errors.New("classification failed")
