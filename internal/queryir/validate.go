package queryir

import "fmt"

// ValidationResult contains the structural and portability analysis of a
// query.
//
// Errors make the query unusable by any backend. Warnings flag features
// outside the portable fragment: the engine evaluates them, the SQL backend
// rejects them.
type ValidationResult struct {
	// IsPortable indicates the query has no errors and uses only portable
	// fragment features.
	IsPortable bool

	// Errors lists structural problems (empty query, unknown operator,
	// malformed operand).
	Errors []string

	// Warnings lists non-portable features used in the query.
	Warnings []string
}

// Valid reports whether the query has no structural errors.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks a query's structure and portability.
//
// Portable fragment rules:
//  1. At least one clause
//  2. Every operator is supported
//  3. Every operand is a node name or integer literal
//
// Bracketed intervention operands are valid but not portable.
//
// Validate is a pure function with no side effects.
func Validate(q Query) ValidationResult {
	v := &validator{
		errors:   []string{},
		warnings: []string{},
	}
	v.validateQuery(q)

	return ValidationResult{
		IsPortable: len(v.errors) == 0 && len(v.warnings) == 0,
		Errors:     v.errors,
		Warnings:   v.warnings,
	}
}

// validator accumulates findings during traversal.
type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if len(q.Clauses) == 0 {
		v.addError("empty query - at least one clause is required")
		return
	}
	for i, c := range q.Clauses {
		v.validateClause(i+1, c)
	}
}

func (v *validator) validateClause(n int, c Clause) {
	if !c.Op.Valid() {
		v.addError("clause %d: unknown operator %q", n, c.Op)
	}
	for _, tok := range []string{c.Left, c.Right} {
		t, err := ParseTerm(tok)
		if err != nil {
			v.addError("clause %d: %v", n, err)
			continue
		}
		if t.Bracketed() {
			v.addWarning("clause %d: operand %q uses an intervention - not portable to stored outcomes", n, t.Key())
		}
	}
}
