package patterns

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Matcher detects capabilities in TypeScript/JavaScript source.
type Matcher struct {
	tsParser  *sitter.Parser
	tsxParser *sitter.Parser
	jsParser  *sitter.Parser
}

// NewMatcher creates a matcher with parsers for the supported grammars.
func NewMatcher() *Matcher {
	tsParser := sitter.NewParser()
	tsParser.SetLanguage(typescript.GetLanguage())
	tsxParser := sitter.NewParser()
	tsxParser.SetLanguage(tsx.GetLanguage())
	jsParser := sitter.NewParser()
	jsParser.SetLanguage(javascript.GetLanguage())
	return &Matcher{
		tsParser:  tsParser,
		tsxParser: tsxParser,
		jsParser:  jsParser,
	}
}

// Match reports which of the required capabilities are present in one
// file's source. A parse failure never counts a capability as absent
// without first attempting the regex fallback.
func (m *Matcher) Match(fileName string, content []byte, required []string) MatchResult {
	if len(required) == 0 {
		return MatchResult{Found: []string{}, Missing: []string{}}
	}

	found := make(capabilitySet)

	tree, err := m.parserFor(fileName).ParseCtx(context.Background(), nil, content)
	if err == nil {
		defer tree.Close()
		m.walk(tree.RootNode(), content, found)
	}

	// Structural parsing can miss shapes some grammar revisions expose
	// differently, and fails entirely on malformed source. Either way the
	// reduced regex table gets a chance before anything is declared missing.
	applyFallback(string(content), required, found)

	return partition(required, found)
}

func (m *Matcher) parserFor(fileName string) *sitter.Parser {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".tsx", ".jsx":
		return m.tsxParser
	case ".js", ".mjs", ".cjs":
		return m.jsParser
	default:
		return m.tsParser
	}
}

// walk dispatches on the closed set of node kinds the matcher understands
// and recurses through the rest of the tree.
func (m *Matcher) walk(node *sitter.Node, content []byte, found capabilitySet) {
	text := func(n *sitter.Node) string {
		if n == nil {
			return ""
		}
		return string(content[n.StartByte():n.EndByte()])
	}

	switch node.Type() {
	case "call_expression":
		m.matchCall(node, content, found)

	case "function_declaration":
		name := text(node.ChildByFieldName("name"))
		if isComponentName(name) {
			found.add(CapFunctionalComponent)
		}
		if params := node.ChildByFieldName("parameters"); params != nil && params.NamedChildCount() > 0 {
			found.add(CapProps)
		}

	case "variable_declarator":
		// const Foo = (props) => ... counts as a functional component.
		name := text(node.ChildByFieldName("name"))
		value := node.ChildByFieldName("value")
		if value != nil && (value.Type() == "arrow_function" || value.Type() == "function_expression" || value.Type() == "function") {
			if isComponentName(name) {
				found.add(CapFunctionalComponent)
			}
			if params := value.ChildByFieldName("parameters"); params != nil && params.NamedChildCount() > 0 {
				found.add(CapProps)
			}
		}

	case "jsx_element", "jsx_self_closing_element":
		m.matchJSX(node, content, found)

	case "member_expression":
		if text(node.ChildByFieldName("object")) == "localStorage" {
			found.add(CapLocalStorage)
		}

	case "ternary_expression":
		found.add(CapConditionalRendering)

	case "binary_expression":
		op := text(node.ChildByFieldName("operator"))
		if op == "&&" || op == "||" {
			found.add(CapConditionalRendering)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		m.walk(node.NamedChild(i), content, found)
	}
}

func (m *Matcher) matchCall(node *sitter.Node, content []byte, found capabilitySet) {
	callee := node.ChildByFieldName("function")
	if callee == nil {
		return
	}
	name := string(content[callee.StartByte():callee.EndByte()])

	switch name {
	case "useState", "useReducer":
		// useReducer satisfies the state-in-component requirement.
		found.add(CapUseState)
	case "createContext":
		found.add(CapCreateContext)
	case "useContext":
		found.add(CapUseContext)
	case "useRef":
		found.add(CapUseRef)
	}
	if strings.HasPrefix(name, "use") && !strings.Contains(name, ".") {
		found.add(CapCustomHook)
	}

	if callee.Type() == "member_expression" {
		prop := callee.ChildByFieldName("property")
		if prop != nil {
			switch string(content[prop.StartByte():prop.EndByte()]) {
			case "map", "filter", "reduce", "forEach":
				found.add(CapArrayMethods)
			}
		}
	}
}

func (m *Matcher) matchJSX(node *sitter.Node, content []byte, found capabilitySet) {
	opening := node
	if node.Type() == "jsx_element" {
		opening = node.NamedChild(0) // jsx_opening_element
		if opening == nil {
			return
		}
	}

	nameNode := opening.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := string(content[nameNode.StartByte():nameNode.EndByte()])

	if name == "Provider" || strings.HasSuffix(name, ".Provider") {
		found.add(CapProvider)
	}

	if name == "input" || name == "textarea" {
		hasValue, hasOnChange := false, false
		for i := 0; i < int(opening.NamedChildCount()); i++ {
			attr := opening.NamedChild(i)
			if attr.Type() != "jsx_attribute" {
				continue
			}
			attrName := attr.NamedChild(0)
			if attrName == nil {
				continue
			}
			switch string(content[attrName.StartByte():attrName.EndByte()]) {
			case "value":
				hasValue = true
			case "onChange":
				hasOnChange = true
			}
		}
		if hasValue && hasOnChange {
			found.add(CapControlledComponents)
		}
	}
}

// isComponentName reports whether an identifier follows the capitalized
// component naming convention.
func isComponentName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
