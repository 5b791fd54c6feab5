// Package compute evaluates the scripts attached to computed fields and
// computed grid columns.
//
// Scripts are written in a small JavaScript-like language: declarations,
// assignment, if/else, return, and expressions with the usual operators. The
// package lexes and parses scripts itself and interprets them over go-cty
// values. Nothing outside the exposed globals is reachable from a script:
//
//	get_field_by_name(label), get_field(label)  value of the field with label
//	formData (row in grid scope)                the raw value snapshot
//	Number, String, parseFloat, parseInt, isNaN, Math.*
//	upper, lower, trim, strlen, substr, format, replace
//
// A failing script never panics; it yields a Result whose Display starts
// with "Error: " and whose Err is a *ScriptFault.
package compute
