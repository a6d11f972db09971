// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package problemfile reads optimization problems from YAML or JSON documents.
package problemfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-openapi/swag"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/AccelByte/extend-build-optimizer/pkg/compactor"
	"github.com/AccelByte/extend-build-optimizer/pkg/config"
	"github.com/AccelByte/extend-build-optimizer/pkg/constants"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
)

// Document is the serialized form of a problem: the raw gear pool plus the formula graph by node id.
type Document struct {
	Slots                   []string                     `json:"slots,omitempty"                   yaml:"slots,omitempty"`
	WeaponID                string                       `json:"weapon,omitempty"                  yaml:"weapon,omitempty"`
	MainStatAssumptionLevel int                          `json:"mainStatAssumptionLevel,omitempty" yaml:"mainStatAssumptionLevel,omitempty"`
	AllowPartial            bool                         `json:"allowPartial,omitempty"            yaml:"allowPartial,omitempty"`
	BaseStats               map[string]float64           `json:"baseStats,omitempty"               yaml:"baseStats,omitempty"`
	Conditions              map[string]string            `json:"conditions,omitempty"              yaml:"conditions,omitempty"`
	MainStatTable           map[string]map[int][]float64 `json:"mainStatTable,omitempty"           yaml:"mainStatTable,omitempty"`
	Gear                    []models.GearItem            `json:"gear"                              yaml:"gear"`
	Formula                 Formula                      `json:"formula"                           yaml:"formula"`
	Exclusions              []Exclusion                  `json:"exclusions,omitempty"              yaml:"exclusions,omitempty"`
	Plot                    *Plot                        `json:"plot,omitempty"                    yaml:"plot,omitempty"`
	TopN                    *int                         `json:"topN,omitempty"                    yaml:"topN,omitempty"`
	MaxWorkers              int                          `json:"maxWorkers,omitempty"              yaml:"maxWorkers,omitempty"`
}

type Formula struct {
	Nodes       []NodeSpec       `json:"nodes"                 yaml:"nodes"`
	Target      string           `json:"target"                yaml:"target"`
	Constraints []ConstraintSpec `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// NodeSpec is one formula node. Kind is one of const, input, sum, product, max, min, lookup, setBonus or subscript,
// references to other nodes are by id.
type NodeSpec struct {
	ID        string            `json:"id"                  yaml:"id"`
	Kind      string            `json:"kind"                yaml:"kind"`
	Value     *float64          `json:"value,omitempty"     yaml:"value,omitempty"`
	Key       string            `json:"key,omitempty"       yaml:"key,omitempty"`
	Children  []string          `json:"children,omitempty"  yaml:"children,omitempty"`
	Condition string            `json:"condition,omitempty" yaml:"condition,omitempty"`
	Branches  map[string]string `json:"branches,omitempty"  yaml:"branches,omitempty"`
	Default   string            `json:"default,omitempty"   yaml:"default,omitempty"`
	Set       string            `json:"set,omitempty"       yaml:"set,omitempty"`
	Threshold int               `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Bonus     string            `json:"bonus,omitempty"     yaml:"bonus,omitempty"`
	Index     string            `json:"index,omitempty"     yaml:"index,omitempty"`
	Table     []float64         `json:"table,omitempty"     yaml:"table,omitempty"`
}

// ConstraintSpec requires node >= min. A "%" unit gives min in display percent.
type ConstraintSpec struct {
	Node string  `json:"node"           yaml:"node"`
	Min  float64 `json:"min"            yaml:"min"`
	Unit string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

type Exclusion struct {
	Set    string `json:"set"    yaml:"set"`
	Pieces int    `json:"pieces" yaml:"pieces"`
}

type Plot struct {
	Axis       string   `json:"axis"                 yaml:"axis"`
	Resolution *int     `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Step       *float64 `json:"step,omitempty"       yaml:"step,omitempty"`
}

// Load reads a document from a YAML or JSON file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", models.ErrConfig)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrConfig, err)
	}
	return doc, nil
}

// Problem compacts the gear pool and resolves the formula graph into a problem ready to solve.
// Settings the document leaves out take the configured defaults.
func (d *Document) Problem(cfg *config.Config, log *logrus.Entry) (*models.OptimizationProblem, error) {
	slots := d.Slots
	if len(slots) == 0 {
		slots = constants.Slots
	}

	graph, err := d.Formula.Graph()
	if err != nil {
		return nil, err
	}
	target, err := graph.Node(d.Formula.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: target: %v", models.ValidationErrorNoTarget, err)
	}

	problem := &models.OptimizationProblem{
		Slots:      slots,
		WeaponID:   d.WeaponID,
		BaseStats:  d.BaseStats,
		Conditions: d.Conditions,
		Target:     target,
		TopN:       cfg.DefaultTopN,
		MaxWorkers: d.MaxWorkers,
	}
	if d.TopN != nil {
		problem.TopN = swag.IntValue(d.TopN)
	}

	for i, spec := range d.Formula.Constraints {
		node, err := graph.Node(spec.Node)
		if err != nil {
			return nil, fmt.Errorf("%w: constraint %d: %v", models.ValidationErrorNilConstraint, i, err)
		}
		minimum := spec.Min
		switch spec.Unit {
		case "":
		case constants.UnitPercent:
			minimum /= 100
		default:
			return nil, fmt.Errorf("%w: constraint %d has unknown unit %q", models.ValidationErrorInvalidMinimum, i, spec.Unit)
		}
		problem.Constraints = append(problem.Constraints, models.Constraint{Node: node, Min: minimum})
	}

	for _, e := range d.Exclusions {
		problem.Exclusions = append(problem.Exclusions, models.Exclusion{Set: e.Set, Pieces: e.Pieces})
	}

	if d.Plot != nil {
		axis, err := graph.Node(d.Plot.Axis)
		if err != nil {
			return nil, fmt.Errorf("%w: axis: %v", models.ValidationErrorInvalidPlot, err)
		}
		problem.Plot = &models.PlotConfig{
			Axis:       axis,
			Resolution: cfg.DefaultPlotResolution,
			Step:       cfg.DefaultPlotStep,
		}
		if d.Plot.Resolution != nil {
			problem.Plot.Resolution = swag.IntValue(d.Plot.Resolution)
		}
		if d.Plot.Step != nil {
			problem.Plot.Step = swag.Float64Value(d.Plot.Step)
		}
	}

	opts := compactor.Options{
		Slots:           slots,
		AssumptionLevel: d.MainStatAssumptionLevel,
		AllowPartial:    d.AllowPartial,
		Log:             log,
	}
	if len(d.MainStatTable) > 0 {
		opts.MainStats = compactor.Table(d.MainStatTable)
	}
	compacted, err := compactor.Compact(d.Gear, opts)
	if err != nil {
		return nil, err
	}
	problem.Buckets = compacted.Buckets

	if err := problem.Validate(); err != nil {
		return nil, err
	}
	return problem, nil
}
