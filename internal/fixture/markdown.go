package fixture

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// markdownMeta is the optional frontmatter of a markdown scenario.
type markdownMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ParseMarkdown extracts a scenario from a markdown document: optional
// YAML frontmatter supplies the name and description, and every fenced
// `yaml` block contributes a partial scenario merged in document order.
// The surrounding prose is ignored, so fixtures double as documentation.
func ParseMarkdown(data []byte) (*Scenario, error) {
	content, frontmatter := extractFrontmatter(data)

	scn := &Scenario{}
	if frontmatter != nil {
		var meta markdownMeta
		if err := yaml.Unmarshal(frontmatter, &meta); err != nil {
			return nil, fmt.Errorf("decode frontmatter: %w", err)
		}
		scn.Name = meta.Name
		scn.Description = meta.Description
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	blocks := 0
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := string(fence.Language(content))
		if lang != "yaml" && lang != "yml" {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(content))
		}

		part, parseErr := ParseYAML(buf.Bytes())
		if parseErr != nil {
			return ast.WalkStop, fmt.Errorf("yaml block %d: %w", blocks+1, parseErr)
		}
		scn.merge(part)
		blocks++
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if blocks == 0 {
		return nil, fmt.Errorf("markdown scenario has no fenced yaml blocks")
	}
	return scn, nil
}

// extractFrontmatter splits leading "---" delimited YAML frontmatter from
// the document body. Returns the body and the frontmatter bytes (nil when
// absent).
func extractFrontmatter(data []byte) (body, frontmatter []byte) {
	delim := []byte("---\n")
	if !bytes.HasPrefix(data, delim) {
		return data, nil
	}

	rest := data[len(delim):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return data, nil
	}

	frontmatter = rest[:end]
	body = rest[end+len("\n---"):]
	// Drop the newline following the closing delimiter, if any
	body = bytes.TrimPrefix(body, []byte("\n"))
	return body, frontmatter
}
