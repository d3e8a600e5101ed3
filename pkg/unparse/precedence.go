package unparse

type precedence int

// Lowest binding first.
const (
	precNamedExpr precedence = iota
	precTuple
	precYield
	precTest
	precOr
	precAnd
	precNot
	precCmp
	precBOr
	precBXor
	precBAnd
	precShift
	precArith
	precTerm
	precFactor
	precPower
	precAwait
	precAtom
)

// precExpr is the level of an operand inside starred items and comparisons.
const precExpr = precBOr

var binOpPrec = map[string]precedence{
	"|":  precBOr,
	"^":  precBXor,
	"&":  precBAnd,
	"<<": precShift,
	">>": precShift,
	"+":  precArith,
	"-":  precArith,
	"*":  precTerm,
	"/":  precTerm,
	"//": precTerm,
	"%":  precTerm,
	"@":  precTerm,
	"**": precPower,
}

func parens(s string, own, want precedence) string {
	if own < want {
		return "(" + s + ")"
	}
	return s
}
