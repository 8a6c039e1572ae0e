// Package yaegi runs notebook code cells with the Yaegi Go interpreter.
//
// Every Run gets a fresh interpreter whose standard output is the writer
// supplied by the caller, so concurrent executions never share captured
// output. Cells are written as Go statements; fmt, math, strings, sort and
// marine are imported before the cell is evaluated. A cell that declares
// "package main" is evaluated as a whole program instead.
package yaegi
