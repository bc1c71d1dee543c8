// Package operators is the registry of expression operators: for each
// operator symbol and arity it records the canonical name, the precedence
// level, and the associativity the grammar must honor. The parser consults it
// when building operator nodes and asserts that its grammar rules agree with
// the registered precedence.
package operators

// Assoc is the associativity of an operator.
type Assoc int

const (
	Left Assoc = iota
	Right
)

// String returns the string representation of Assoc
func (a Assoc) String() string {
	if a == Right {
		return "right"
	}

	return "left"
}

// Def is the canonical definition of one operator. Precedence runs from 1
// (binds loosest: null-coalescing and the ternary conditional) to 8 (unary
// prefix operators); access chains bind tighter than any operator and are not
// registered here.
type Def struct {
	Name       string
	Symbol     string
	Arity      int
	Precedence int
	Assoc      Assoc
}

type key struct {
	symbol string
	arity  int
}

var registry = map[key]Def{}

func register(def Def) {
	registry[key{symbol: def.Symbol, arity: def.Arity}] = def
}

func init() {
	register(Def{Name: "NullCoalescing", Symbol: "?:", Arity: 2, Precedence: 1, Assoc: Right})
	register(Def{Name: "Conditional", Symbol: "? :", Arity: 3, Precedence: 1, Assoc: Right})
	register(Def{Name: "Or", Symbol: "or", Arity: 2, Precedence: 2, Assoc: Left})
	register(Def{Name: "And", Symbol: "and", Arity: 2, Precedence: 3, Assoc: Left})
	register(Def{Name: "Equal", Symbol: "==", Arity: 2, Precedence: 4, Assoc: Left})
	register(Def{Name: "NotEqual", Symbol: "!=", Arity: 2, Precedence: 4, Assoc: Left})
	register(Def{Name: "LessThan", Symbol: "<", Arity: 2, Precedence: 5, Assoc: Left})
	register(Def{Name: "GreaterThan", Symbol: ">", Arity: 2, Precedence: 5, Assoc: Left})
	register(Def{Name: "LessThanOrEqual", Symbol: "<=", Arity: 2, Precedence: 5, Assoc: Left})
	register(Def{Name: "GreaterThanOrEqual", Symbol: ">=", Arity: 2, Precedence: 5, Assoc: Left})
	register(Def{Name: "Plus", Symbol: "+", Arity: 2, Precedence: 6, Assoc: Left})
	register(Def{Name: "Minus", Symbol: "-", Arity: 2, Precedence: 6, Assoc: Left})
	register(Def{Name: "Times", Symbol: "*", Arity: 2, Precedence: 7, Assoc: Left})
	register(Def{Name: "DivideBy", Symbol: "/", Arity: 2, Precedence: 7, Assoc: Left})
	register(Def{Name: "Mod", Symbol: "%", Arity: 2, Precedence: 7, Assoc: Left})
	register(Def{Name: "Negative", Symbol: "-", Arity: 1, Precedence: 8, Assoc: Right})
	register(Def{Name: "Not", Symbol: "not", Arity: 1, Precedence: 8, Assoc: Right})
}

// Lookup resolves an operator by symbol and arity. The second return value is
// false when no such operator is registered.
func Lookup(symbol string, arity int) (Def, bool) {
	def, ok := registry[key{symbol: symbol, arity: arity}]

	return def, ok
}
