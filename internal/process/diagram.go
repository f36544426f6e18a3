package process

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Swimlane layout geometry, in SVG user units.
const (
	laneHeight   = 140
	laneLabelW   = 150
	colWidth     = 190
	nodeWidth    = 150
	nodeHeight   = 60
	diagMarginX  = 30
	diagMarginY  = 70
	maxNodeLabel = 44
)

type diagramNode struct {
	name    string
	lane    int
	col     int
	gateway bool
}

// WriteSwimlaneDiagram renders a subprocess as an SVG swimlane: one lane
// per responsible party, substeps in document order left to right, and
// arrows following next_steps. Branching substeps are drawn as diamonds.
func (s *Store) WriteSwimlaneDiagram(sub Subprocess) (string, error) {
	slug := strings.Trim(unsafePathChars.ReplaceAllString(sub.StepName, "_"), "_")
	if slug == "" {
		slug = "step"
	}
	path := filepath.Join(s.dir, "diagrams", slug+".svg")

	svg := renderSwimlaneSVG(sub)
	if err := s.writeFile(path, []byte(svg), "svg"); err != nil {
		return "", err
	}
	return path, nil
}

func renderSwimlaneSVG(sub Subprocess) string {
	lanes, nodes := layoutSubprocess(sub)

	cols := 0
	for _, n := range nodes {
		if n.col+1 > cols {
			cols = n.col + 1
		}
	}
	if cols == 0 {
		cols = 1
	}
	width := diagMarginX*2 + laneLabelW + cols*colWidth
	height := diagMarginY + len(lanes)*laneHeight + diagMarginX
	if len(lanes) == 0 {
		height = diagMarginY + laneHeight + diagMarginX
	}

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="Helvetica, Arial, sans-serif">`,
		width, height, width, height)
	sb.WriteString(`<defs><marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">` +
		`<path d="M 0 0 L 10 5 L 0 10 z" fill="#444"/></marker></defs>`)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#ffffff"/>`, width, height)

	// Title
	fmt.Fprintf(&sb, `<text x="%d" y="40" font-size="22" font-weight="bold" fill="#1a1a1a">%s</text>`,
		diagMarginX, escapeXML(sub.StepName))

	// Lane bands
	for i, lane := range lanes {
		y := diagMarginY + i*laneHeight
		fill := "#f4f6f8"
		if i%2 == 1 {
			fill = "#e9edf1"
		}
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="#c3cad2"/>`,
			diagMarginX, y, width-2*diagMarginX, laneHeight, fill)
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="#d7dde4" stroke="#c3cad2"/>`,
			diagMarginX, y, laneLabelW, laneHeight)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="14" font-weight="bold" fill="#333">%s</text>`,
			diagMarginX+12, y+laneHeight/2+5, escapeXML(truncateLabel(lane, 18)))
	}

	centers := make(map[string][2]int, len(nodes))
	for _, n := range nodes {
		cx := diagMarginX + laneLabelW + n.col*colWidth + colWidth/2
		cy := diagMarginY + n.lane*laneHeight + laneHeight/2
		centers[n.name] = [2]int{cx, cy}
	}

	// Arrows under the nodes
	for i, n := range nodes {
		from := centers[n.name]
		targets := sub.SubprocessSteps[i].NextSteps
		if len(targets) == 0 && i+1 < len(nodes) {
			targets = []string{nodes[i+1].name}
		}
		for _, target := range targets {
			to, ok := centers[target]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#444" stroke-width="1.5" marker-end="url(#arrow)"/>`,
				from[0], from[1], to[0], to[1])
		}
	}

	// Nodes
	for _, n := range nodes {
		c := centers[n.name]
		if n.gateway {
			fmt.Fprintf(&sb, `<polygon points="%d,%d %d,%d %d,%d %d,%d" fill="#fff3cd" stroke="#b8860b" stroke-width="1.5"/>`,
				c[0], c[1]-nodeHeight/2,
				c[0]+nodeWidth/2, c[1],
				c[0], c[1]+nodeHeight/2,
				c[0]-nodeWidth/2, c[1])
		} else {
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" rx="8" fill="#dbe9f9" stroke="#2b6cb0" stroke-width="1.5"/>`,
				c[0]-nodeWidth/2, c[1]-nodeHeight/2, nodeWidth, nodeHeight)
		}
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="12" text-anchor="middle" fill="#1a1a1a">%s</text>`,
			c[0], c[1]+4, escapeXML(truncateLabel(n.name, maxNodeLabel/2)))
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// layoutSubprocess assigns each substep a lane row and a column in
// document order. Lane order follows first appearance.
func layoutSubprocess(sub Subprocess) ([]string, []diagramNode) {
	laneIndex := make(map[string]int)
	var lanes []string
	nodes := make([]diagramNode, 0, len(sub.SubprocessSteps))

	for i, substep := range sub.SubprocessSteps {
		lane := substep.LaneName()
		idx, ok := laneIndex[lane]
		if !ok {
			idx = len(lanes)
			laneIndex[lane] = idx
			lanes = append(lanes, lane)
		}
		nodes = append(nodes, diagramNode{
			name:    substep.SubstepName,
			lane:    idx,
			col:     i,
			gateway: substep.IsGateway(),
		})
	}

	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].col < nodes[j].col })
	return lanes, nodes
}

func truncateLabel(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	if limit <= 1 {
		return text[:limit]
	}
	return text[:limit-1] + "…"
}
