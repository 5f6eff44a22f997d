// Package eval walks expression ASTs against a read-only Context.
//
// Evaluation is a direct recursive walk. Truthiness is permissive:
// false, zero, the empty string, the empty list, and nil are falsy;
// everything else is truthy. Logical && and || short-circuit and return
// the deciding operand's value rather than a coerced boolean.
//
// Regex-bearing string methods (match, search, replace, split) are
// intercepted at compile time, not at run time: CompilePatterns rejects
// any call whose pattern argument is not a string literal, runs literal
// patterns through the safety validator, and pre-compiles the survivors.
// matchAll is rejected unconditionally because its iterator semantics
// have no safe representation in this sandbox.
//
// Regex method results: match returns the first matched substring (""
// when nothing matched), search returns the match index or -1, replace
// rewrites the first match, split returns a list.
package eval
