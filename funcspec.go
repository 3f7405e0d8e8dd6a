package formula

import "fmt"

// ArityKind selects how a FunctionSpec's argument count is constrained.
type ArityKind uint8

const (
	ArityExact ArityKind = iota
	ArityRange
	ArityAtLeast
)

// Arity describes how many arguments a function accepts.
type Arity struct {
	Kind     ArityKind
	Min, Max int
}

func Exactly(n int) Arity      { return Arity{Kind: ArityExact, Min: n, Max: n} }
func Between(min, max int) Arity { return Arity{Kind: ArityRange, Min: min, Max: max} }
func AtLeast(min int) Arity    { return Arity{Kind: ArityAtLeast, Min: min} }

func (a Arity) Accepts(n int) bool {
	switch a.Kind {
	case ArityExact:
		return n == a.Min
	case ArityRange:
		return n >= a.Min && n <= a.Max
	case ArityAtLeast:
		return n >= a.Min
	default:
		return false
	}
}

func (a Arity) String() string {
	switch a.Kind {
	case ArityExact:
		return fmt.Sprintf("exactly %d argument(s)", a.Min)
	case ArityRange:
		return fmt.Sprintf("%d to %d arguments", a.Min, a.Max)
	case ArityAtLeast:
		return fmt.Sprintf("at least %d argument(s)", a.Min)
	default:
		return "unknown arity"
	}
}

// ArgSpec names one formal parameter position, primarily for error messages
// and documentation; Variadic marks the final, repeatable position.
type ArgSpec struct {
	Name     string
	Variadic bool
}

// FuncEval is a function's evaluation rule: given the already-constructed
// argument expressions (not yet evaluated) and the evaluation context, it
// produces a result or an EvalError. Functions evaluate their own arguments
// via ctx so they can implement lazy/short-circuit semantics (IF, IFERROR)
// where required.
type FuncEval func(ctx *EvalCtx, args []Expr) (CellValue, EvalError)

// FunctionSpec is the uniform description of one named function: its
// arity, its static result kind, and its evaluation rule. The shifter
// needs no function-specific knowledge and the printer only one piece (it
// drops YEARFRAC's literal-0 basis argument) — Call's Args are ordinary
// Expr children like any other node's.
type FunctionSpec struct {
	Name      string
	Arity     Arity
	Args      []ArgSpec
	ResKind   ValueKind
	Eval      FuncEval
}

// Call invokes a named function against its argument expressions.
type Call struct {
	Spec *FunctionSpec
	Args []Expr
}

func (n *Call) Kind() NodeKind        { return NodeCall }
func (n *Call) ResultKind() ValueKind { return n.Spec.ResKind }

// NewCall is the smart constructor used in place of a surface parser: it
// validates arity against spec and panics on mismatch, the same way a
// parser's reduction action would reject a malformed argument list before
// ever producing a tree.
func NewCall(spec *FunctionSpec, args ...Expr) *Call {
	if !spec.Arity.Accepts(len(args)) {
		panic(fmt.Sprintf("formula: %s expects %s, got %d", spec.Name, spec.Arity, len(args)))
	}
	return &Call{Spec: spec, Args: args}
}
