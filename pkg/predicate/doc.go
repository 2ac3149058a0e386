/*
Package predicate evaluates a WHERE clause's list of Conditions against a
Record (C2).

A Condition is a (field, op, value, logic) tuple. Resolution of field
walks a dotted path left to right over nested objects (pkg/record's
Resolve); a missing segment makes the whole condition false. Composition
is a strict left fold over the condition list: for index i >= 1,
logic[i] combines the running result with predicate(i) using plain
left-associative AND/OR — never assigning predicate(i) into the
accumulator before combining, which is the bug the source's evaluator had
(see DESIGN.md).
*/
package predicate
