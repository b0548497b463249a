package exec

import "fmt"

// InstantiateError is returned by Instantiate when a decoded module's
// cross-section references cannot be resolved or its data segments do
// not fit the memory it declares (spec §7, InstantiateError).
type InstantiateError struct {
	Reason string
}

func (e *InstantiateError) Error() string { return "wasm: instantiate: " + e.Reason }

func errMissingTypeIndex(idx uint32) error {
	return &InstantiateError{Reason: fmt.Sprintf("missing type index %d", idx)}
}

func errDataSegmentOutOfBounds(i int) error {
	return &InstantiateError{Reason: fmt.Sprintf("data segment %d is out of bounds", i)}
}

func errMissingMemoryForDataSegment(i int) error {
	return &InstantiateError{Reason: fmt.Sprintf("data segment %d declared with no memory present", i)}
}
