// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are collected in a Registry; the filesystem loader asks the
// registry to normalise every file it reads.
package normalisers
