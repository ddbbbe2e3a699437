package action

import "errors"

var (
	errDuplicateFactory      = errors.New("action already registered under this name")
	errFactoryNotFound       = errors.New("no action registered under this name")
	errWeightOffsetOutOfRange = errors.New("weight offset outside registered total weight")
)
