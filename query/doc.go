// Package query provides the predicates accepted by collection reads.
//
// A Filter compares one field against an operand; a FilterSet ANDs filters;
// Func wraps an arbitrary function. Filters on indexed fields are resolved
// through the collection's binary indices by Select, everything else is
// evaluated against each candidate record.
package query
