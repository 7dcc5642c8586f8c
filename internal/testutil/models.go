// Package testutil provides shared fixtures for tests.
package testutil

import "github.com/roach88/causalcore/internal/ir"

// XYModel returns X → Y with X binary and Y taking all four functions of X.
// N = 2×4 = 8.
//
//	X = [0 1 0 1 0 1 0 1]
//	Y = [0 0 0 1 1 0 1 1]
func XYModel() *ir.Model {
	return &ir.Model{
		Name: "xy",
		Nodes: []ir.Node{
			{Name: "X", NodalTypes: []string{"0", "1"}},
			{
				Name:       "Y",
				Parents:    []string{"X"},
				NodalTypes: []string{"Y00", "Y01", "Y10", "Y11"},
				Table: &ir.OutcomeTable{
					Columns: [][]int{{0}, {1}},
					Rows: []ir.TableRow{
						{Label: "Y00", Values: []int{0, 0}},
						{Label: "Y01", Values: []int{0, 1}},
						{Label: "Y10", Values: []int{1, 0}},
						{Label: "Y11", Values: []int{1, 1}},
					},
				},
			},
		},
	}
}

// AndOrModel returns X, Z → Y where Y is either X AND Z or X OR Z.
// N = 2×2×2 = 8.
//
//	X = [0 1 0 1 0 1 0 1]
//	Z = [0 0 1 1 0 0 1 1]
//	Y = [0 0 0 1 0 1 1 1]
func AndOrModel() *ir.Model {
	return &ir.Model{
		Name: "andor",
		Nodes: []ir.Node{
			{Name: "X", NodalTypes: []string{"0", "1"}},
			{Name: "Z", NodalTypes: []string{"0", "1"}},
			{
				Name:       "Y",
				Parents:    []string{"X", "Z"},
				NodalTypes: []string{"and", "or"},
				Table: &ir.OutcomeTable{
					Columns: [][]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
					Rows: []ir.TableRow{
						{Label: "and", Values: []int{0, 0, 0, 1}},
						{Label: "or", Values: []int{0, 1, 1, 1}},
					},
				},
			},
		},
	}
}

// ChainModel returns X → M → Y with the standard binary nodal types on M
// and Y. N = 2×4×4 = 32.
func ChainModel() *ir.Model {
	return &ir.Model{
		Name: "chain",
		Nodes: []ir.Node{
			{Name: "X", NodalTypes: []string{"0", "1"}},
			{Name: "M", Parents: []string{"X"}, NodalTypes: binaryLabels, Table: binaryTable()},
			{Name: "Y", Parents: []string{"M"}, NodalTypes: binaryLabels, Table: binaryTable()},
		},
	}
}

// binaryLabels name the four functions of one binary parent by their outputs
// under parent 0 then parent 1.
var binaryLabels = []string{"00", "10", "01", "11"}

func binaryTable() *ir.OutcomeTable {
	return &ir.OutcomeTable{
		Columns: [][]int{{0}, {1}},
		Rows: []ir.TableRow{
			{Label: "00", Values: []int{0, 0}},
			{Label: "10", Values: []int{1, 0}},
			{Label: "01", Values: []int{0, 1}},
			{Label: "11", Values: []int{1, 1}},
		},
	}
}

// ExogenousModel returns independent exogenous nodes with the given labels.
func ExogenousModel(labels ...[]string) *ir.Model {
	m := &ir.Model{Name: "exogenous"}
	for j, l := range labels {
		m.Nodes = append(m.Nodes, ir.Node{Name: string(rune('A' + j)), NodalTypes: l})
	}
	return m
}
