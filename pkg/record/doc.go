/*
Package record implements rokt's universal value type.

A Record is either a scalar (null, bool, number, string), an ordered
sequence of Records, or a mapping from names to Records. Object keys are
unique and preserve insertion order — not for lookup, only so GET/ADD
round-trips don't silently reorder a row's fields when the server prints
it back out.

Records are the unit the rest of the system speaks: a Dataset is a
sequence of Records (pkg/record.Container), a Condition resolves a dotted
path against a Record (pkg/predicate), and the canonical on-disk textual
form encrypted by pkg/cryptox is a Record's JSON encoding.
*/
package record
