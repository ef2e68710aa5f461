// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package classifier

import (
	"fmt"
	"strings"
)

// DOT renders the fitted tree in Graphviz dot format for inspection. Branch
// nodes show the feature name and threshold; the left edge is the true
// branch. Missing names fall back to the feature or class index.
func (t *DecisionTree) DOT(featureNames, classNames []string) string {
	var b strings.Builder
	b.WriteString("digraph Tree {\n")
	b.WriteString("node [shape=box, style=\"filled, rounded\"] ;\n")
	id := 0
	var walk func(n *Node) int
	walk = func(n *Node) int {
		my := id
		id++
		if n.Leaf {
			fmt.Fprintf(&b, "%d [label=%q, fillcolor=\"#e5813955\"] ;\n", my, nameAt(classNames, n.Class, "class"))
			return my
		}
		fmt.Fprintf(&b, "%d [label=%q, fillcolor=\"#399de555\"] ;\n", my,
			fmt.Sprintf("%s <= %.3f", nameAt(featureNames, n.Feature, "x"), n.Threshold))
		left := walk(n.Left)
		fmt.Fprintf(&b, "%d -> %d [label=\"true\"] ;\n", my, left)
		right := walk(n.Right)
		fmt.Fprintf(&b, "%d -> %d [label=\"false\"] ;\n", my, right)
		return my
	}
	if t.Root != nil {
		walk(t.Root)
	}
	b.WriteString("}\n")
	return b.String()
}

func nameAt(names []string, i int, fallback string) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%s[%d]", fallback, i)
}
