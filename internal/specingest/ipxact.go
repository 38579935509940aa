package specingest

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

// xmlNode is a generic tree used to walk an IP-XACT document looking for
// elements whose (possibly namespaced) local tag name ends in "register".
type xmlNode struct {
	XMLName  xml.Name
	Content  string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

func (n *xmlNode) localName() string {
	parts := strings.Split(n.XMLName.Local, ":")
	return parts[len(parts)-1]
}

// findText does a depth-first search for the first descendant (or self)
// whose local tag name equals suffix, returning its trimmed text.
func (n *xmlNode) findText(suffix string) (string, bool) {
	if strings.EqualFold(n.localName(), suffix) {
		if t := strings.TrimSpace(n.Content); t != "" {
			return t, true
		}
	}
	for i := range n.Children {
		if t, ok := n.Children[i].findText(suffix); ok {
			return t, true
		}
	}
	return "", false
}

// collectByTag returns every descendant (including self) whose local tag
// name ends in tag (case-insensitive), in document order.
func (n *xmlNode) collectByTag(tag string) []*xmlNode {
	var out []*xmlNode
	if strings.HasSuffix(strings.ToLower(n.localName()), strings.ToLower(tag)) {
		out = append(out, n)
	}
	for i := range n.Children {
		out = append(out, n.Children[i].collectByTag(tag)...)
	}
	return out
}

// ParseIPXACT walks the XML document and emits one reset clause per
// element whose tag ends in "register".
func ParseIPXACT(path string, _ Options) ([]model.SpecClause, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading IP-XACT file %s: %w", path, err)
	}

	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing IP-XACT XML %s: %w", path, err)
	}

	regs := root.collectByTag("register")
	var clauses []model.SpecClause
	for i, reg := range regs {
		idx := i + 1
		name, ok := reg.findText("name")
		if !ok {
			name = fmt.Sprintf("reg_%d", idx)
		}
		reset, ok := reg.findText("value")
		if !ok {
			reset = "0"
		}
		clauses = append(clauses, model.SpecClause{
			ClauseID: fmt.Sprintf("ipxact_%03d_reset", idx),
			Text:     fmt.Sprintf("Register %s resets to %s.", name, reset),
			Source:   path,
			Tags:     []string{"ipxact", "register", "reset"},
			Metadata: map[string]interface{}{"register": name, "reset": reset},
		})
	}
	return clauses, nil
}
