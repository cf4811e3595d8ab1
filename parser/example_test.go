package parser_test

import (
	"context"
	"fmt"

	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/diag"
	"github.com/ava12/rbparse/parser"
)

func ExampleCompile() {
	src := "def twice(x)\n  x * 2\nend\n"
	res, e := parser.Compile(context.Background(), parser.Input{Name: "example.rb", Source: []byte(src)})
	if e != nil {
		fmt.Println(e)
		return
	}
	fmt.Println(ast.Dump(res.AST, res.Names))
	fmt.Println(ast.Print(res.AST, res.Names))

	// Output:
	// (defn twice (args (x) () - false -) (call (lvar x) * (array ((lit 2)))) (x))
	// def twice(x)
	//   x * 2
	// end
}

func ExampleWithSink() {
	c := &diag.Collector{}
	_, e := parser.Compile(context.Background(), parser.Input{Name: "bad.rb", Source: []byte("def f; X = 1; end\n")}, parser.WithSink(c))
	fmt.Println(e)
	for _, d := range c.All() {
		fmt.Println(d)
	}

	// Output:
	// compile error
	// bad.rb:1: error: dynamic constant assignment
}
