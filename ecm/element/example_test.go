package element_test

import (
	"fmt"

	"github.com/yuefan98/NLEIS-Toolbox/ecm/element"
)

func ExampleLookup() {
	el, _ := element.Lookup("RCOn")
	fmt.Println(el.NumParams(), element.IsNonlinear("RCOn"), element.LinearCounterpart("RCOn"))

	// Output:
	// 3 true RCO
}

func ExampleElement_Evaluate() {
	el, _ := element.Lookup("R")
	z, _ := el.Evaluate([]float64{25}, []float64{100, 1})
	fmt.Println(z[0], z[1])

	// Output:
	// (25+0i) (25+0i)
}

func ExampleBaseName() {
	fmt.Println(element.BaseName("TDSn0"), element.BaseName("R12"))

	// Output:
	// TDSn R
}
