package parser

import "fmt"

// Rule is a labeled grammar edge: the derivation consumed Child while Parent
// was the preceding token.
type Rule struct {
	Parent string
	Child  string
}

func (r Rule) String() string {
	return fmt.Sprintf("%s=>%s", r.Parent, r.Child)
}
