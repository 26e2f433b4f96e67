// Package output provides the destinations for rendered documents.
//
// The package is organized around three concerns:
//
//   - Writers (writer.go): Pluggable destinations via the [Writer]
//     interface, with [StdoutWriter] for the terminal and [FileWriter] for
//     files on an afero filesystem.
//
//   - Artifacts (artifact.go): The per-member files produced by splitting
//     a collection, written in order by [WriteArtifacts].
//
//   - Highlighting (highlight.go): Optional ANSI colouring of JSON and XML
//     for terminal output.
package output
