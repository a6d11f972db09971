// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	atk := NewInput("atk")
	critDMG := NewInput("critDMG_")

	tests := []struct {
		name string
		root Node
		snap Snapshot
		want float64
	}{
		{
			name: "sum of inputs",
			root: Sum(atk, NewInput("hp")),
			snap: Snapshot{Stats: map[string]float64{"atk": 10, "hp": 15}},
			want: 25,
		},
		{
			name: "unknown input reads zero",
			root: Sum(atk, NewInput("eleMas")),
			snap: Snapshot{Stats: map[string]float64{"atk": 10}},
			want: 10,
		},
		{
			name: "product with shared node",
			root: Product(atk, Sum(NewConst(1), critDMG), atk),
			snap: Snapshot{Stats: map[string]float64{"atk": 2, "critDMG_": 0.5}},
			want: 6,
		},
		{
			name: "max and min",
			root: Sum(Max(NewConst(1), NewConst(3), NewConst(2)), Min(NewConst(-1), NewConst(4))),
			want: 2,
		},
		{
			name: "lookup matched branch",
			root: NewLookup("hit.ele", map[string]Node{"pyro": NewConst(5), "hydro": NewConst(7)}, NewConst(1)),
			snap: Snapshot{Conditions: map[string]string{"hit.ele": "hydro"}},
			want: 7,
		},
		{
			name: "lookup unmatched uses default",
			root: NewLookup("hit.ele", map[string]Node{"pyro": NewConst(5)}, NewConst(1)),
			snap: Snapshot{Conditions: map[string]string{"hit.ele": "cryo"}},
			want: 1,
		},
		{
			name: "lookup missing condition without default",
			root: NewLookup("hit.ele", map[string]Node{"pyro": NewConst(5)}, nil),
			want: 0,
		},
		{
			name: "set bonus active",
			root: NewSetBonus("Gladiator", 2, NewConst(0.18)),
			snap: Snapshot{SetCounts: map[string]int{"Gladiator": 3}},
			want: 0.18,
		},
		{
			name: "set bonus inactive",
			root: NewSetBonus("Gladiator", 4, NewConst(0.35)),
			snap: Snapshot{SetCounts: map[string]int{"Gladiator": 3}},
			want: 0,
		},
		{
			name: "set bonus without value is a gate",
			root: NewSetBonus("Gladiator", 2, nil),
			snap: Snapshot{SetCounts: map[string]int{"Gladiator": 2}},
			want: 1,
		},
		{
			name: "subscript",
			root: NewSubscript(NewInput("refinement"), []float64{0.2, 0.25, 0.3}),
			snap: Snapshot{Stats: map[string]float64{"refinement": 2}},
			want: 0.3,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Evaluate(test.root, test.snap)
			require.NoError(t, err)
			assert.InDelta(t, test.want, got, 1e-12)
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	root := Product(Sum(NewInput("atk"), NewConst(0.1)), NewInput("critDMG_"))
	snap := Snapshot{Stats: map[string]float64{"atk": 1.3, "critDMG_": 0.7}}

	first, err := Evaluate(root, snap)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		got, err := Evaluate(root, snap)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestEvaluate_CombinationErrors(t *testing.T) {
	tests := []struct {
		name string
		root Node
		snap Snapshot
	}{
		{
			name: "infinite product",
			root: Product(NewConst(math.MaxFloat64), NewConst(10)),
		},
		{
			name: "nan input",
			root: Sum(NewInput("x"), NewConst(1)),
			snap: Snapshot{Stats: map[string]float64{"x": math.NaN()}},
		},
		{
			name: "subscript out of range",
			root: NewSubscript(NewInput("refinement"), []float64{1, 2}),
			snap: Snapshot{Stats: map[string]float64{"refinement": 5}},
		},
		{
			name: "subscript not an integer",
			root: NewSubscript(NewInput("refinement"), []float64{1, 2}),
			snap: Snapshot{Stats: map[string]float64{"refinement": 0.5}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Evaluate(test.root, test.snap)
			assert.ErrorIs(t, err, ErrCombination)
			assert.NotErrorIs(t, err, ErrEvaluationFault)
		})
	}
}

func TestCompile_Faults(t *testing.T) {
	cyclic := Sum(NewConst(1))
	cyclic.Children = append(cyclic.Children, Product(cyclic))

	var nilInput *Input

	tests := []struct {
		name string
		root Node
	}{
		{name: "nil root", root: nil},
		{name: "typed nil child", root: Sum(nilInput)},
		{name: "cycle", root: cyclic},
		{name: "empty combine", root: Sum()},
		{name: "unknown op", root: &Combine{Op: Op(42), Children: []Node{NewConst(1)}}},
		{name: "empty subscript table", root: NewSubscript(NewConst(0), nil)},
		{name: "zero threshold", root: NewSetBonus("Gladiator", 0, nil)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Compile(NewLayout(), test.root)
			assert.ErrorIs(t, err, ErrEvaluationFault)
		})
	}
}

func TestCompile_SharedNodesCompiledOnce(t *testing.T) {
	shared := Sum(NewInput("atk"), NewConst(1))
	layout := NewLayout()

	program, err := Compile(layout, Product(shared, shared), Max(shared, NewConst(0)))
	require.NoError(t, err)

	// atk, 1, shared sum, product, 0, max
	assert.Equal(t, 6, program.Size())
	assert.Equal(t, 2, program.NumRoots())
	assert.Equal(t, []string{"atk"}, layout.StatKeys())
}

func TestCompile_FoldsConstants(t *testing.T) {
	layout := NewLayout()
	refine := NewSubscript(NewConst(2), []float64{0.2, 0.25, 0.3})
	constant := Sum(NewConst(1), Product(NewConst(2), NewConst(3)), refine)
	dynamic := Product(NewInput("atk"), constant)
	outside := NewSubscript(NewConst(7), []float64{1})

	program, err := Compile(layout, constant, dynamic, outside)
	require.NoError(t, err)

	assert.Equal(t, kindConst, program.instrs[program.roots[0]].kind)
	assert.Equal(t, kindCombine, program.instrs[program.roots[1]].kind)
	assert.Equal(t, kindSubscript, program.instrs[program.roots[2]].kind)

	frame := program.NewFrame(layout, nil)
	frame.Stats[layout.Stat("atk")] = 10

	folded, err := frame.Eval(0)
	require.NoError(t, err)
	want, err := Evaluate(constant, Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, want, folded)
	assert.InDelta(t, 7.3, folded, 1e-12)

	value, err := frame.Eval(1)
	require.NoError(t, err)
	assert.Equal(t, 10*folded, value)

	_, err = frame.Eval(2)
	assert.ErrorIs(t, err, ErrCombination)
}

func TestFrame_LazyRoots(t *testing.T) {
	layout := NewLayout()
	bad := NewSubscript(NewInput("idx"), []float64{1})
	program, err := Compile(layout, NewInput("atk"), bad)
	require.NoError(t, err)

	frame := program.NewFrame(layout, nil)
	frame.Load(layout, Snapshot{Stats: map[string]float64{"atk": 3, "idx": 4}})

	got, err := frame.Eval(0)
	require.NoError(t, err)
	assert.Equal(t, float64(3), got)

	_, err = frame.Eval(1)
	assert.ErrorIs(t, err, ErrCombination)

	frame.Load(layout, Snapshot{Stats: map[string]float64{"atk": 5, "idx": 0}})
	got, err = frame.Eval(1)
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)
	got, err = frame.Eval(0)
	require.NoError(t, err)
	assert.Equal(t, float64(5), got)
}

func TestFrame_ResetInvalidatesMemo(t *testing.T) {
	layout := NewLayout()
	program, err := Compile(layout, Product(NewInput("atk"), NewConst(2)))
	require.NoError(t, err)

	frame := program.NewFrame(layout, nil)
	atk, ok := layout.LookupStat("atk")
	require.True(t, ok)

	frame.Stats[atk] = 1
	frame.Reset()
	got, err := frame.Eval(0)
	require.NoError(t, err)
	assert.Equal(t, float64(2), got)

	frame.Stats[atk] = 4
	frame.Reset()
	got, err = frame.Eval(0)
	require.NoError(t, err)
	assert.Equal(t, float64(8), got)
}
