// Package facts classifies and evaluates entity fact lists.
//
// A fact is one line of free text attached to an entity. Three lexical
// forms exist: plain text (contributed to downstream prompt assembly),
// directives ($if, $respond, $retry, $edit, $view, $use, $blacklist,
// $locked, and "key: value" config facts), and macro-bearing plain text
// ({{char}} and {{user}} substitutions).
//
// The package has three layers:
//
//  1. Directive parsing - Classify turns an ordered fact list into plain
//     facts, conditionals, and permission directives without evaluating
//     anything.
//  2. Permission resolution - pure functions interpreting the parsed
//     edit/view/use/blacklist lists against a user identity.
//  3. The evaluation engine - EvaluateFacts runs every conditional
//     against a per-event context and produces a single response
//     decision plus the surviving fact list.
//
// The engine holds no per-evaluation state: identical inputs always
// produce identical results, and a malformed fact never aborts
// evaluation of the rest of the set.
package facts
