/*

Process of compilation

Program Text ->
	lex ->
Token Stream ->
	resolve ->
Token Stream + Proc Table ->
	expand ->
Proc-Free Token Stream ->
	lower ->
Instruction Sequence (ir) ->
	compile ->
Assembly Text ->
	as + ld ->
Binary Executable

The vm package takes the Instruction Sequence directly and executes
it in place of the last three steps.

*/
package compiler
