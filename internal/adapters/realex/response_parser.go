package realex

import (
	"strings"

	"github.com/kevin07696/realex-gateway/internal/domain"
)

const responseElement = "response"

// ParseResponse flattens a gateway response into a field map.
// Leaf children of a response element map to their lowercased name.
// Compound children contribute parent_child entries for their direct
// children only. A document that cannot be decoded yields an empty map.
func ParseResponse(body []byte) domain.ParsedResponse {
	fields := domain.ParsedResponse{}

	root, err := ParseDocument(body)
	if err != nil {
		return fields
	}

	flattenResponses(root, fields)
	return fields
}

// flattenResponses visits every response element in the tree, not just the root
func flattenResponses(e *Element, fields domain.ParsedResponse) {
	if e.Name == responseElement {
		for _, node := range e.Children {
			if node.IsLeaf() {
				fields[strings.ToLower(node.Name)] = normalize(node.Text)
				continue
			}
			for _, child := range node.Children {
				key := strings.ToLower(node.Name) + "_" + strings.ToLower(child.Name)
				fields[key] = normalize(ownText(child))
			}
		}
	}
	for _, c := range e.Children {
		flattenResponses(c, fields)
	}
}

// ownText is the text of an element. For compound elements the text is only
// the whitespace between children, which counts as empty.
func ownText(e *Element) string {
	if !e.IsLeaf() && strings.TrimSpace(e.Text) == "" {
		return ""
	}
	return e.Text
}

func normalize(text string) interface{} {
	switch text {
	case "true":
		return true
	case "false":
		return false
	case "", "null":
		return nil
	default:
		return text
	}
}
