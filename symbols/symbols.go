/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package symbols finds the C function a source line belongs to.
package symbols

import (
	"context"
	"os"

	"github.com/golang/glog"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// EnclosingFunction returns the name of the function definition whose
// span covers the 1-based line, or "" when there is none.
func EnclosingFunction(source []byte, line int) string {
	if len(source) == 0 || line < 1 {
		return ""
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(c.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		glog.Warningf("tree-sitter parse failed: %v", err)
		return ""
	}
	defer tree.Close()

	row := uint32(line - 1)
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "function_definition" {
			continue
		}
		if node.StartPoint().Row <= row && row <= node.EndPoint().Row {
			return functionName(node, source)
		}
	}
	return ""
}

// EnclosingFunctionInFile reads path and calls EnclosingFunction.
func EnclosingFunctionInFile(path string, line int) string {
	source, err := os.ReadFile(path)
	if err != nil {
		glog.V(1).Infof("cannot read %s: %v", path, err)
		return ""
	}
	return EnclosingFunction(source, line)
}

// functionName unwraps function_definition -> [pointer_declarator ->]
// function_declarator -> identifier.
func functionName(node *sitter.Node, source []byte) string {
	decl := node.ChildByFieldName("declarator")
	for decl != nil {
		switch decl.Type() {
		case "identifier", "field_identifier":
			return decl.Content(source)
		}
		decl = decl.ChildByFieldName("declarator")
	}
	return ""
}
