// Package desc parses the two XML documents a Yamaha receiver publishes:
// the UPnP MediaRenderer device description and the proprietary
// YamahaRemoteControl unit description that enumerates zones, commands
// and per-source capabilities.
package desc

import "fmt"

// DescriptorError indicates a malformed or incomplete descriptor document.
// It is not retryable; discovery aborts on it.
type DescriptorError struct {
	Doc    string
	Reason string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("%s descriptor invalid: %s", e.Doc, e.Reason)
}

func newDeviceDescError(reason string) *DescriptorError {
	return &DescriptorError{Doc: "device", Reason: reason}
}

func newUnitDescError(reason string) *DescriptorError {
	return &DescriptorError{Doc: "unit", Reason: reason}
}
