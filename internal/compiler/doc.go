// Package compiler is the document front-end: it guards raw bytes and parses
// JSON, YAML or HCL graph documents into graphs.
package compiler
