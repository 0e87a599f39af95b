package nodecloud

import (
	"strings"

	"go.uber.org/zap"
)

// Graph is the immutable node/link collection of one cloud.
// Replace it wholesale; never edit it while an Engine is ticking.
// A Graph assembled by hand instead of through Build is indexed when it is
// handed to Engine.SetGraph.
type Graph struct {
	Nodes []Node
	Links []Link

	index    map[string]int
	entities map[string]Entity
}

// Stats summarizes a graph
type Stats struct {
	Primaries   int
	Secondaries int
	Links       int
}

// Build derives the secondary population from the tags of entities and lays
// both populations out on their shells.
func Build(entities []Entity, opts Options) *Graph {
	o := opts.withDefaults()
	log := o.Logger

	g := &Graph{
		index:    make(map[string]int),
		entities: make(map[string]Entity),
	}

	// Primaries, first id wins
	primaries := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.ID == "" {
			log.Debug("skipping entity without id", zap.String("title", e.Title))
			continue
		}
		if _, dup := g.entities[e.ID]; dup {
			log.Debug("skipping duplicate entity", zap.String("id", e.ID))
			continue
		}
		g.entities[e.ID] = e
		primaries = append(primaries, e)
	}

	// Distinct tags in first-seen order
	type tag struct {
		key   string
		label string
	}
	var tags []tag
	seen := make(map[string]bool)
	for _, e := range primaries {
		for _, t := range e.Tags {
			key := tagKey(t, o.NormalizeTags)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			label := t
			if o.NormalizeTags {
				label = strings.TrimSpace(t)
			}
			tags = append(tags, tag{key: key, label: label})
		}
	}

	radius := o.Radius * o.Scale
	g.Nodes = make([]Node, 0, len(primaries)+len(tags))
	for i, e := range primaries {
		g.index[e.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			ID:    e.ID,
			Kind:  KindPrimary,
			Label: e.Title,
			Image: e.Image,
			Pos:   SpherePoint(i, len(primaries), radius, 0),
		})
	}

	secondaryIDs := make(map[string]string, len(tags))
	inner := Shell(len(tags), radius*o.InnerShellRatio, o.InnerShellOffset)
	for i, t := range tags {
		id := o.SecondaryIDPrefix + t.key
		if _, clash := g.index[id]; clash {
			log.Debug("skipping tag whose id collides with an entity", zap.String("id", id))
			continue
		}
		secondaryIDs[t.key] = id
		g.index[id] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			ID:    id,
			Kind:  KindSecondary,
			Label: t.label,
			Pos:   inner[i],
		})
	}

	for _, e := range primaries {
		for _, t := range e.Tags {
			sid, ok := secondaryIDs[tagKey(t, o.NormalizeTags)]
			if !ok {
				continue
			}
			g.link(e.ID, sid)
		}
	}

	log.Debug("graph built",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("links", len(g.Links)))
	return g
}

// link adds the pair once and keeps Related symmetric
func (g *Graph) link(primaryID, secondaryID string) {
	p := &g.Nodes[g.index[primaryID]]
	if contains(p.Related, secondaryID) {
		return
	}
	s := &g.Nodes[g.index[secondaryID]]
	p.Related = append(p.Related, secondaryID)
	s.Related = append(s.Related, primaryID)
	g.Links = append(g.Links, Link{Source: primaryID, Target: secondaryID})
}

// indexed returns g when it came from Build, otherwise a copy with its id
// table filled in. Nodes without an id, repeated ids and unknown kinds are
// dropped. Links must join a primary to a secondary in either direction and
// are stored primary first; Related is rebuilt from them.
func (g *Graph) indexed(log *zap.Logger) *Graph {
	if g == nil {
		return &Graph{index: map[string]int{}, entities: map[string]Entity{}}
	}
	if g.index != nil {
		return g
	}
	out := &Graph{
		Nodes:    make([]Node, 0, len(g.Nodes)),
		index:    make(map[string]int, len(g.Nodes)),
		entities: make(map[string]Entity),
	}
	for _, n := range g.Nodes {
		if n.ID == "" || !n.Kind.Valid() {
			log.Debug("dropping invalid node", zap.String("id", n.ID), zap.Stringer("kind", n.Kind))
			continue
		}
		if _, dup := out.index[n.ID]; dup {
			log.Debug("dropping duplicate node", zap.String("id", n.ID))
			continue
		}
		n.Related = nil
		out.index[n.ID] = len(out.Nodes)
		out.Nodes = append(out.Nodes, n)
		if n.Kind == KindPrimary {
			out.entities[n.ID] = Entity{ID: n.ID, Title: n.Label, Image: n.Image}
		}
	}
	for _, l := range g.Links {
		s, sok := out.Node(l.Source)
		t, tok := out.Node(l.Target)
		if !sok || !tok || s.Kind == t.Kind {
			log.Debug("dropping invalid link", zap.String("source", l.Source), zap.String("target", l.Target))
			continue
		}
		if s.Kind == KindSecondary {
			s, t = t, s
		}
		out.link(s.ID, t.ID)
	}
	return out
}

func tagKey(t string, normalize bool) string {
	if normalize {
		return strings.ToLower(strings.TrimSpace(t))
	}
	return t
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Node looks a node up by id
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// Entity returns the input record behind a primary node
func (g *Graph) Entity(id string) (Entity, bool) {
	if g == nil {
		return Entity{}, false
	}
	e, ok := g.entities[id]
	return e, ok
}

// Neighbors returns the related ids of a node
func (g *Graph) Neighbors(id string) []string {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	return n.Related
}

// PrimariesWithTag lists the entities linked to a secondary node, in input order
func (g *Graph) PrimariesWithTag(secondaryID string) []Entity {
	n, ok := g.Node(secondaryID)
	if !ok || n.Kind != KindSecondary {
		return nil
	}
	out := make([]Entity, 0, len(n.Related))
	for _, pid := range n.Related {
		if e, ok := g.entities[pid]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// Stats counts nodes per kind and links
func (g *Graph) Stats() Stats {
	var s Stats
	if g == nil {
		return s
	}
	for i := range g.Nodes {
		switch g.Nodes[i].Kind {
		case KindPrimary:
			s.Primaries++
		case KindSecondary:
			s.Secondaries++
		}
	}
	s.Links = len(g.Links)
	return s
}
