// Package patterns detects required code capabilities in challenge source
// files. Detection first walks a tree-sitter parse tree over a closed set of
// node kinds; when structural parsing fails it degrades to regex heuristics
// for a reduced capability subset. The package never returns an error: an
// unparseable file silently falls back to heuristic mode.
package patterns

// Capability tags recognized by the matcher. These are the names challenge
// metadata uses in patternsRequired.
const (
	CapUseState             = "useState"
	CapCreateContext        = "createContext"
	CapUseContext           = "useContext"
	CapUseRef               = "useRef"
	CapCustomHook           = "customHook"
	CapArrayMethods         = "arrayMethods"
	CapFunctionalComponent  = "functionalComponent"
	CapProps                = "props"
	CapProvider             = "Provider"
	CapControlledComponents = "controlledComponents"
	CapConditionalRendering = "conditionalRendering"
	CapLocalStorage         = "localStorage"
)

// MatchResult partitions the required capability set into found and missing.
type MatchResult struct {
	Found   []string `json:"patternsFound"`
	Missing []string `json:"patternsMissing"`
}

// capabilitySet is a small found-set helper.
type capabilitySet map[string]struct{}

func (s capabilitySet) add(cap string)      { s[cap] = struct{}{} }
func (s capabilitySet) has(cap string) bool { _, ok := s[cap]; return ok }

// partition splits required into found/missing against the detected set,
// preserving the required order.
func partition(required []string, found capabilitySet) MatchResult {
	result := MatchResult{Found: []string{}, Missing: []string{}}
	for _, cap := range required {
		if found.has(cap) {
			result.Found = append(result.Found, cap)
		} else {
			result.Missing = append(result.Missing, cap)
		}
	}
	return result
}
