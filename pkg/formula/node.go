// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package formula holds the numeric formula graph handed to the optimizer and its evaluator.
// A graph is a DAG of nodes, shared sub-expressions are the same *node value referenced twice.
// Graphs are built by the caller and only read by this package.
package formula

import "fmt"

// Node is one vertex of a formula graph. The set of node kinds is closed,
// only the types declared in this file implement it.
type Node interface {
	node()
}

// Op is the reduction applied by a Combine node.
type Op int

const (
	OpSum Op = iota
	OpProduct
	OpMax
	OpMin
)

func (o Op) String() string {
	switch o {
	case OpSum:
		return "sum"
	case OpProduct:
		return "product"
	case OpMax:
		return "max"
	case OpMin:
		return "min"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// ParseOp returns the Op named s.
func ParseOp(s string) (Op, bool) {
	switch s {
	case "sum":
		return OpSum, true
	case "product", "prod":
		return OpProduct, true
	case "max":
		return OpMax, true
	case "min":
		return OpMin, true
	}
	return 0, false
}

// Const is a fixed value.
type Const struct {
	Value float64
}

// Input reads a stat from the snapshot, either static base data or a stat contributed by the gear.
// Stats absent from the snapshot read as 0.
type Input struct {
	Key string
}

// Combine reduces its children with Op.
type Combine struct {
	Op       Op
	Children []Node
}

// Lookup selects a branch by the value of a discrete condition (e.g. the element of the hit).
// An unmatched or missing condition selects Default, a nil Default reads as 0.
type Lookup struct {
	Condition string
	Branches  map[string]Node
	Default   Node
}

// SetBonus is enabled when at least Threshold equipped pieces belong to Set.
// Enabled it evaluates to Bonus, or 1 when Bonus is nil. Disabled it evaluates to 0.
type SetBonus struct {
	Set       string
	Threshold int
	Bonus     Node
}

// Subscript reads Table at the integer value of Index, e.g. a refinement-indexed passive.
type Subscript struct {
	Index Node
	Table []float64
}

func (*Const) node()     {}
func (*Input) node()     {}
func (*Combine) node()   {}
func (*Lookup) node()    {}
func (*SetBonus) node()  {}
func (*Subscript) node() {}

func NewConst(value float64) *Const {
	return &Const{Value: value}
}

func NewInput(key string) *Input {
	return &Input{Key: key}
}

func Sum(children ...Node) *Combine {
	return &Combine{Op: OpSum, Children: children}
}

func Product(children ...Node) *Combine {
	return &Combine{Op: OpProduct, Children: children}
}

func Max(children ...Node) *Combine {
	return &Combine{Op: OpMax, Children: children}
}

func Min(children ...Node) *Combine {
	return &Combine{Op: OpMin, Children: children}
}

func NewLookup(condition string, branches map[string]Node, def Node) *Lookup {
	return &Lookup{Condition: condition, Branches: branches, Default: def}
}

func NewSetBonus(set string, threshold int, bonus Node) *SetBonus {
	return &SetBonus{Set: set, Threshold: threshold, Bonus: bonus}
}

func NewSubscript(index Node, table []float64) *Subscript {
	return &Subscript{Index: index, Table: table}
}
