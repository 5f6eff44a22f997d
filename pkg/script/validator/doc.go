// Package validator statically analyzes regex pattern strings and rejects
// anything that could be unsafe to hand to a backtracking regex engine.
//
// The expression evaluator only ever passes string-literal patterns here,
// but a literal can still express catastrophic backtracking (ReDoS), so
// every pattern is checked before it is compiled or matched. The accepted
// dialect is a restricted subset: non-capturing groups, alternation,
// character classes, anchors, the shorthand escapes \d \D \w \W \s \S
// \t \n \r \b, and single-level quantifiers.
//
// Rejected constructs: capturing groups, named groups, backreferences,
// lookahead/lookbehind, unknown escapes, quantified anchors, quantifiers
// with no preceding element, unterminated constructs, unknown group
// types, and the core safety invariant: a quantifier applied to a group
// whose content already contains a quantified sub-expression at any
// depth.
//
// A known, accepted weakness: polynomial constructs such as "(?:a|a)+"
// pass validation. They are not nested quantifiers by this definition,
// and their worst case is polynomial rather than exponential.
//
// Go's regexp package is linear-time and immune to the pathology this
// package guards against; the restrictions are still enforced so that
// fact authors' patterns stay portable to backtracking hosts and behave
// predictably everywhere.
package validator
