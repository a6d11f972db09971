// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package problemfile

import (
	"fmt"

	"github.com/go-openapi/swag"

	"github.com/AccelByte/extend-build-optimizer/pkg/formula"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
)

// Graph resolves node ids into formula nodes. A node referenced several times is built once and shared.
type Graph struct {
	specs    map[string]NodeSpec
	nodes    map[string]formula.Node
	visiting map[string]bool
}

// Graph indexes the formula nodes by id. Nodes are resolved lazily by Graph.Node.
func (f Formula) Graph() (*Graph, error) {
	g := &Graph{
		specs:    make(map[string]NodeSpec, len(f.Nodes)),
		nodes:    make(map[string]formula.Node, len(f.Nodes)),
		visiting: make(map[string]bool),
	}
	for _, spec := range f.Nodes {
		if spec.ID == "" {
			return nil, fmt.Errorf("%w: node without id", models.ValidationErrorInvalidFormula)
		}
		if _, ok := g.specs[spec.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate node %q", models.ValidationErrorInvalidFormula, spec.ID)
		}
		g.specs[spec.ID] = spec
	}
	return g, nil
}

// Node returns the node with id, building it and every node it references.
func (g *Graph) Node(id string) (formula.Node, error) {
	if node, ok := g.nodes[id]; ok {
		return node, nil
	}
	spec, ok := g.specs[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown node %q", models.ValidationErrorInvalidFormula, id)
	}
	if g.visiting[id] {
		return nil, fmt.Errorf("%w: cycle through node %q", models.ValidationErrorInvalidFormula, id)
	}
	g.visiting[id] = true
	defer delete(g.visiting, id)

	node, err := g.build(spec)
	if err != nil {
		return nil, err
	}
	g.nodes[id] = node
	return node, nil
}

func (g *Graph) optional(id string) (formula.Node, error) {
	if id == "" {
		return nil, nil
	}
	return g.Node(id)
}

func (g *Graph) build(spec NodeSpec) (formula.Node, error) {
	switch spec.Kind {
	case "const":
		if spec.Value == nil {
			return nil, fmt.Errorf("%w: const %q has no value", models.ValidationErrorInvalidFormula, spec.ID)
		}
		return formula.NewConst(swag.Float64Value(spec.Value)), nil
	case "input":
		if spec.Key == "" {
			return nil, fmt.Errorf("%w: input %q has no key", models.ValidationErrorInvalidFormula, spec.ID)
		}
		return formula.NewInput(spec.Key), nil
	case "lookup":
		branches := make(map[string]formula.Node, len(spec.Branches))
		for value, id := range spec.Branches {
			branch, err := g.Node(id)
			if err != nil {
				return nil, err
			}
			branches[value] = branch
		}
		def, err := g.optional(spec.Default)
		if err != nil {
			return nil, err
		}
		return formula.NewLookup(spec.Condition, branches, def), nil
	case "setBonus":
		bonus, err := g.optional(spec.Bonus)
		if err != nil {
			return nil, err
		}
		return formula.NewSetBonus(spec.Set, spec.Threshold, bonus), nil
	case "subscript":
		index, err := g.Node(spec.Index)
		if err != nil {
			return nil, err
		}
		return formula.NewSubscript(index, spec.Table), nil
	}

	op, ok := formula.ParseOp(spec.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: node %q has unknown kind %q", models.ValidationErrorInvalidFormula, spec.ID, spec.Kind)
	}
	if len(spec.Children) == 0 {
		return nil, fmt.Errorf("%w: %s %q has no children", models.ValidationErrorInvalidFormula, spec.Kind, spec.ID)
	}
	children := make([]formula.Node, len(spec.Children))
	for i, id := range spec.Children {
		child, err := g.Node(id)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return &formula.Combine{Op: op, Children: children}, nil
}
