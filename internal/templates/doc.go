// Package templates implements the theme micro-language: a closed,
// non-Turing-complete interpreter with exactly three constructs.
//
//	{{#each path}} ... {{/each}}     loop over a sequence
//	{{#if path}} ... {{/if}}         render when path is truthy
//	{{#unless path}} ... {{/unless}} render when path is falsy
//	{{path}}                         substitute the value at path
//
// Paths are dotted field lookups ("item.author.name"). Inside a loop body
// the scope is the current element's fields plus the reserved keys this,
// @index, @first, @last and @root. Nothing in a template is ever compiled
// or evaluated as code, and there are no functions, assignments or includes.
//
// Resolution failures and malformed tags never fail a render: the affected
// fragment becomes empty text, a Warning is recorded, and the rest of the
// template renders normally.
package templates
