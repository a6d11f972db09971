// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package formula

import (
	"fmt"
	"math"
)

type kind uint8

const (
	kindConst kind = iota
	kindInput
	kindCombine
	kindLookup
	kindSetBonus
	kindSubscript
)

const noChild = -1

type instr struct {
	kind      kind
	value     float64
	index     int // stat index for inputs, set index for set bonuses
	op        Op
	args      []int
	condition string
	branches  map[string]int
	child     int // default branch, bonus or subscript index
	threshold int
	table     []float64
}

// Program is a formula graph flattened into an instruction array, children first.
// A Program is immutable and safe to share between workers, all mutable state lives in Frame.
type Program struct {
	instrs []instr
	roots  []int
}

// Compile flattens the graphs rooted at roots, registering every stat and set they read into layout.
// Shared nodes are compiled once and combinations or subscripts over constants are folded into constants.
// A cycle, a nil node, an empty combination, an empty subscript table
// or a non-positive set threshold is reported as ErrEvaluationFault.
func Compile(layout *Layout, roots ...Node) (*Program, error) {
	c := &compiler{
		layout:   layout,
		index:    make(map[Node]int),
		visiting: make(map[Node]bool),
	}
	p := &Program{roots: make([]int, 0, len(roots))}
	for i, root := range roots {
		idx, err := c.compile(root)
		if err != nil {
			return nil, fmt.Errorf("root %d: %w", i, err)
		}
		p.roots = append(p.roots, idx)
	}
	p.instrs = c.instrs
	return p, nil
}

func (p *Program) NumRoots() int {
	return len(p.roots)
}

func (p *Program) Size() int {
	return len(p.instrs)
}

type compiler struct {
	layout   *Layout
	instrs   []instr
	index    map[Node]int
	visiting map[Node]bool
}

func fault(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEvaluationFault, fmt.Sprintf(format, args...))
}

func (c *compiler) compile(n Node) (int, error) {
	if n == nil || isNilNode(n) {
		return 0, fault("nil node")
	}
	if idx, ok := c.index[n]; ok {
		return idx, nil
	}
	if c.visiting[n] {
		return 0, fault("cycle through %T node", n)
	}
	c.visiting[n] = true
	defer delete(c.visiting, n)

	var in instr
	switch v := n.(type) {
	case *Const:
		in = instr{kind: kindConst, value: v.Value}
	case *Input:
		in = instr{kind: kindInput, index: c.layout.Stat(v.Key)}
	case *Combine:
		if len(v.Children) == 0 {
			return 0, fault("%s with no children", v.Op)
		}
		if v.Op < OpSum || v.Op > OpMin {
			return 0, fault("unknown combine %s", v.Op)
		}
		in = instr{kind: kindCombine, op: v.Op, args: make([]int, 0, len(v.Children))}
		for _, child := range v.Children {
			idx, err := c.compile(child)
			if err != nil {
				return 0, err
			}
			in.args = append(in.args, idx)
		}
	case *Lookup:
		in = instr{kind: kindLookup, condition: v.Condition, branches: make(map[string]int, len(v.Branches)), child: noChild}
		for value, branch := range v.Branches {
			idx, err := c.compile(branch)
			if err != nil {
				return 0, err
			}
			in.branches[value] = idx
		}
		if v.Default != nil {
			idx, err := c.compile(v.Default)
			if err != nil {
				return 0, err
			}
			in.child = idx
		}
	case *SetBonus:
		if v.Threshold <= 0 {
			return 0, fault("set bonus %q with threshold %d", v.Set, v.Threshold)
		}
		in = instr{kind: kindSetBonus, index: c.layout.Set(v.Set), threshold: v.Threshold, child: noChild}
		if v.Bonus != nil {
			idx, err := c.compile(v.Bonus)
			if err != nil {
				return 0, err
			}
			in.child = idx
		}
	case *Subscript:
		if len(v.Table) == 0 {
			return 0, fault("subscript with empty table")
		}
		idx, err := c.compile(v.Index)
		if err != nil {
			return 0, err
		}
		in = instr{kind: kindSubscript, child: idx, table: v.Table}
	default:
		return 0, fault("unknown node type %T", n)
	}

	in = c.fold(in)
	idx := len(c.instrs)
	c.instrs = append(c.instrs, in)
	c.index[n] = idx
	return idx, nil
}

// fold replaces an instruction whose operands are all constant with its value. It accumulates in
// child order like Frame.eval, so folded and unfolded programs agree bit for bit.
// An out of range constant subscript is kept, it fails per combination.
func (c *compiler) fold(in instr) instr {
	switch in.kind {
	case kindCombine:
		for _, arg := range in.args {
			if c.instrs[arg].kind != kindConst {
				return in
			}
		}
		acc := c.instrs[in.args[0]].value
		for _, arg := range in.args[1:] {
			acc = combine(in.op, acc, c.instrs[arg].value)
		}
		return instr{kind: kindConst, value: acc}
	case kindSubscript:
		index := c.instrs[in.child]
		if index.kind != kindConst {
			return in
		}
		i := int(index.value)
		if float64(i) != index.value || i < 0 || i >= len(in.table) {
			return in
		}
		return instr{kind: kindConst, value: in.table[i]}
	}
	return in
}

func combine(op Op, acc, x float64) float64 {
	switch op {
	case OpSum:
		return acc + x
	case OpProduct:
		return acc * x
	case OpMax:
		return math.Max(acc, x)
	case OpMin:
		return math.Min(acc, x)
	}
	return acc
}

func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Const:
		return v == nil
	case *Input:
		return v == nil
	case *Combine:
		return v == nil
	case *Lookup:
		return v == nil
	case *SetBonus:
		return v == nil
	case *Subscript:
		return v == nil
	}
	return false
}

// Frame is the per-worker evaluation state of a Program: the current stat snapshot and a memo
// of the values computed for it. Values are computed on demand, so a root whose result is not
// needed (e.g. the target of a combination rejected by a constraint) is never evaluated.
type Frame struct {
	Stats      []float64
	SetCounts  []int
	Conditions map[string]string

	program *Program
	values  []float64
	stamp   []uint32
	gen     uint32
}

// NewFrame sizes a frame for the program and the layout it was compiled against.
func (p *Program) NewFrame(layout *Layout, conditions map[string]string) *Frame {
	return &Frame{
		Stats:      make([]float64, layout.NumStats()),
		SetCounts:  make([]int, layout.NumSets()),
		Conditions: conditions,
		program:    p,
		values:     make([]float64, len(p.instrs)),
		stamp:      make([]uint32, len(p.instrs)),
		gen:        1,
	}
}

// Reset invalidates the memoized values. Call it after Stats or SetCounts change.
func (f *Frame) Reset() {
	f.gen++
	if f.gen == 0 {
		clear(f.stamp)
		f.gen = 1
	}
}

// Eval returns the value of the i-th root for the frame's current snapshot.
// A non finite result or an index outside a subscript table is reported as ErrCombination.
func (f *Frame) Eval(root int) (float64, error) {
	v, err := f.eval(f.program.roots[root])
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: root %d evaluated to %v", ErrCombination, root, v)
	}
	return v, nil
}

func (f *Frame) eval(idx int) (float64, error) {
	if f.stamp[idx] == f.gen {
		return f.values[idx], nil
	}
	in := &f.program.instrs[idx]

	var v float64
	switch in.kind {
	case kindConst:
		v = in.value
	case kindInput:
		v = f.Stats[in.index]
	case kindCombine:
		acc, err := f.eval(in.args[0])
		if err != nil {
			return 0, err
		}
		for _, arg := range in.args[1:] {
			x, err := f.eval(arg)
			if err != nil {
				return 0, err
			}
			acc = combine(in.op, acc, x)
		}
		v = acc
	case kindLookup:
		child := in.child
		if value, ok := f.Conditions[in.condition]; ok {
			if branch, ok := in.branches[value]; ok {
				child = branch
			}
		}
		if child != noChild {
			x, err := f.eval(child)
			if err != nil {
				return 0, err
			}
			v = x
		}
	case kindSetBonus:
		if f.SetCounts[in.index] >= in.threshold {
			v = 1
			if in.child != noChild {
				x, err := f.eval(in.child)
				if err != nil {
					return 0, err
				}
				v = x
			}
		}
	case kindSubscript:
		x, err := f.eval(in.child)
		if err != nil {
			return 0, err
		}
		i := int(x)
		if float64(i) != x || i < 0 || i >= len(in.table) {
			return 0, fmt.Errorf("%w: subscript %v outside table of %d", ErrCombination, x, len(in.table))
		}
		v = in.table[i]
	}

	f.values[idx] = v
	f.stamp[idx] = f.gen
	return v, nil
}
