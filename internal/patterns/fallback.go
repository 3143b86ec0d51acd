package patterns

import "regexp"

var (
	funcComponentRe      = regexp.MustCompile(`function\s+[A-Z][A-Za-z0-9]*\s*\(`)
	constComponentRe     = regexp.MustCompile(`const\s+[A-Z][A-Za-z0-9]*\s*=\s*(?:\([^)]*\)\s*=>|function)`)
	propsRe              = regexp.MustCompile(`(?i)props`)
	namedParamRe         = regexp.MustCompile(`function\s+[A-Z][A-Za-z0-9]*\s*\([^)]+\)`)
	valueBindingRe       = regexp.MustCompile(`value=\s*\{`)
	changeHandlerRe      = regexp.MustCompile(`onChange=\s*\{`)
	useStateRe           = regexp.MustCompile(`use(?:State|Reducer)\s*\(`)
	useRefRe             = regexp.MustCompile(`useRef\s*\(`)
	arrayMethodRe        = regexp.MustCompile(`\.(?:map|filter|reduce|forEach)\s*\(`)
	conditionalRe        = regexp.MustCompile(`\?[^.:]*:|&&|\|\|`)
	localStorageAccessRe = regexp.MustCompile(`localStorage\.`)
)

// applyFallback runs the reduced regex heuristic table for capabilities the
// structural pass did not find. Only capabilities with a reliable textual
// signature participate; the rest stay missing if the tree walk missed them.
func applyFallback(content string, required []string, found capabilitySet) {
	for _, cap := range required {
		if found.has(cap) {
			continue
		}
		switch cap {
		case CapFunctionalComponent:
			if funcComponentRe.MatchString(content) || constComponentRe.MatchString(content) {
				found.add(cap)
			}
		case CapProps:
			if propsRe.MatchString(content) || namedParamRe.MatchString(content) {
				found.add(cap)
			}
		case CapControlledComponents:
			if valueBindingRe.MatchString(content) && changeHandlerRe.MatchString(content) {
				found.add(cap)
			}
		case CapUseState:
			if useStateRe.MatchString(content) {
				found.add(cap)
			}
		case CapUseRef:
			if useRefRe.MatchString(content) {
				found.add(cap)
			}
		case CapArrayMethods:
			if arrayMethodRe.MatchString(content) {
				found.add(cap)
			}
		case CapConditionalRendering:
			if conditionalRe.MatchString(content) {
				found.add(cap)
			}
		case CapLocalStorage:
			if localStorageAccessRe.MatchString(content) {
				found.add(cap)
			}
		}
	}
}
