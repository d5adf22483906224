// Package errors provides the classified error primitives used across sitecfg.
//
// Every configuration failure is reported as a ClassifiedError carrying a
// category (config, validation, links, integrity, ...), a severity, an
// optional machine-readable Code and structured context such as the offending
// field path. A fluent ErrorBuilder creates them and CLI / HTTP adapters turn
// them into exit codes and JSON payloads.
//
// Example usage:
//
//	err := errors.MissingField("title").
//		WithContext("source", "siteconfig.yaml").
//		Build()
package errors
