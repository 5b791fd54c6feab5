package placement

import (
	"strings"

	"github.com/goliatone/go-formtree/pkg/tree"
)

// Drop zone identifiers emitted by the canvas.
const (
	ZoneCanvas          = "canvas"
	zoneEdgePrefix      = "drop-"
	zoneRowPrefix       = "row-"
	zoneContainerPrefix = "container-"
	zoneTabsPrefix      = "tabs-"
)

// ParseZone decodes a canvas drop-zone id into a target and edge:
//
//	canvas                 root
//	drop-<edge>-<id>       edge band of node id
//	row-<id>, container-<id>  inside node id
//	tabs-<tabsID>-<tabID>  inside the active tab
//
// Tab zones are matched against the tree because ids may contain dashes.
func ParseZone(t tree.Tree, zone string) (target string, edge Edge, ok bool) {
	switch {
	case zone == ZoneCanvas:
		return "", Inside, true

	case strings.HasPrefix(zone, zoneEdgePrefix):
		rest := strings.TrimPrefix(zone, zoneEdgePrefix)
		name, id, found := strings.Cut(rest, "-")
		if !found || id == "" {
			return "", Inside, false
		}
		e, err := ParseEdge(name)
		if err != nil || e == Inside {
			return "", Inside, false
		}
		return id, e, true

	case strings.HasPrefix(zone, zoneRowPrefix):
		return insideZone(t, strings.TrimPrefix(zone, zoneRowPrefix))

	case strings.HasPrefix(zone, zoneContainerPrefix):
		return insideZone(t, strings.TrimPrefix(zone, zoneContainerPrefix))

	case strings.HasPrefix(zone, zoneTabsPrefix):
		rest := strings.TrimPrefix(zone, zoneTabsPrefix)
		var match string
		tree.Walk(t, func(n *tree.Node, _ tree.Location) bool {
			if n.Kind != tree.KindTabs || !strings.HasPrefix(rest, n.ID+"-") {
				return true
			}
			tabID := strings.TrimPrefix(rest, n.ID+"-")
			for _, tab := range n.Tabs {
				if tab != nil && tab.ID == tabID {
					match = tabID
					return false
				}
			}
			return true
		})
		return match, Inside, match != ""
	}
	return "", Inside, false
}

func insideZone(t tree.Tree, id string) (string, Edge, bool) {
	if _, ok := tree.FindByID(t, id); !ok {
		return "", Inside, false
	}
	return id, Inside, true
}
