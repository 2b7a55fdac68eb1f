// Package dto holds the serialized shapes of graph documents and decodes them
// from JSON, YAML and HCL.
package dto
