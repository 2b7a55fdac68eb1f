/*
Package dsl provides a fluent builder for constructing cardflow graphs in Go.

It is an alternative to JSON/YAML/HCL documents for tests, generated patches and
embedding, with the compiler checking ids and options.

Example usage:

	b := dsl.New(graph.WithID("bassline"))

	b.Add("clock").Card("clock").Param("bpm", 120).To("seq")
	b.Add("seq").Card("step-sequencer").To("synth")
	b.Add("synth").Use(synthCard).Wire("audio", "out", "in")
	b.Add("out").Card("speaker")

	g, err := b.Build()
*/
package dsl
