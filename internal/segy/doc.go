// Package segy describes the header block placed in front of a raw payload
// to produce a SEG-Y shaped file, and inspects files produced that way.
//
// The header is a placeholder: a block of TextualHeaderSize fill bytes with
// no structure. No binary header or trace headers are produced or parsed.
package segy
