// Package harness runs YAML-described codec conformance scenarios: a
// schema plus a list of encode/decode/identify cases with expected bytes
// or expected error categories. Scenarios double as cross-implementation
// fixtures - the expected hex strings are the binary contract, so any
// other implementation of the format can replay the same files.
package harness
