package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formtree/pkg/placement"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// AddAnswers is what the add wizard collected.
type AddAnswers struct {
	Drop     placement.Drop
	Label    string
	Required bool
}

// target is one place the new component may go.
type target struct {
	id    string
	title string
	// inside is the only edge for the canvas and tabs.
	insideOnly bool
	container  bool
}

// AskAdd walks the user through adding one component to t: the kind, where
// it goes, its label, and whether it is required.
func AskAdd(ctx context.Context, d Driver, t tree.Tree) (AddAnswers, error) {
	if d == nil {
		return AddAnswers{}, errors.New("prompt: driver is nil")
	}

	kinds := tree.Kinds()
	kindNames := make([]string, len(kinds))
	for i, k := range kinds {
		kindNames[i] = string(k)
	}
	ki, err := d.Select(ctx, SelectConfig{Message: "Component type", Options: kindNames, PageSize: 12})
	if err != nil {
		return AddAnswers{}, err
	}
	if ki < 0 || ki >= len(kinds) {
		return AddAnswers{}, fmt.Errorf("prompt: kind choice %d out of range", ki)
	}
	kind := kinds[ki]

	targets := targetsOf(t)
	titles := make([]string, len(targets))
	for i, tg := range targets {
		titles[i] = tg.title
	}
	ti, err := d.Select(ctx, SelectConfig{Message: "Place next to", Options: titles, PageSize: 15})
	if err != nil {
		return AddAnswers{}, err
	}
	if ti < 0 || ti >= len(targets) {
		return AddAnswers{}, fmt.Errorf("prompt: target choice %d out of range", ti)
	}
	tg := targets[ti]

	answers := AddAnswers{Drop: placement.Drop{Target: tg.id, Edge: placement.Inside, Source: placement.NewComponent(kind)}}
	if !tg.insideOnly {
		edges := []placement.Edge{placement.Bottom, placement.Top, placement.Left, placement.Right}
		if tg.container {
			edges = append([]placement.Edge{placement.Inside}, edges...)
		}
		names := make([]string, len(edges))
		for i, e := range edges {
			names[i] = e.String()
		}
		ei, err := d.Select(ctx, SelectConfig{Message: "Edge", Options: names})
		if err != nil {
			return AddAnswers{}, err
		}
		if ei < 0 || ei >= len(edges) {
			return AddAnswers{}, fmt.Errorf("prompt: edge choice %d out of range", ei)
		}
		answers.Drop.Edge = edges[ei]
	}

	defaults := tree.DefaultProps(kind)
	if _, labelled := defaults[tree.PropLabel]; labelled {
		label, err := d.Input(ctx, InputConfig{
			Message: "Label",
			Default: defaults.String(tree.PropLabel),
			Validator: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("label is required")
				}
				return nil
			},
		})
		if err != nil {
			return AddAnswers{}, err
		}
		answers.Label = strings.TrimSpace(label)
	}
	if _, ok := defaults[tree.PropRequired]; ok {
		required, err := d.Confirm(ctx, ConfirmConfig{Message: "Required?"})
		if err != nil {
			return AddAnswers{}, err
		}
		answers.Required = required
	}
	return answers, nil
}

func targetsOf(t tree.Tree) []target {
	out := []target{{id: "", title: "(end of form)", insideOnly: true}}
	tree.Walk(t, func(n *tree.Node, loc tree.Location) bool {
		indent := strings.Repeat("  ", loc.Depth)
		title := fmt.Sprintf("%s%s [%s]", indent, displayName(n), n.Kind)
		out = append(out, target{id: n.ID, title: title, container: n.Kind.IsContainer()})
		for _, tab := range n.Tabs {
			if tab == nil {
				continue
			}
			out = append(out, target{
				id:         tab.ID,
				title:      fmt.Sprintf("%s  tab %q", indent, tab.Label),
				insideOnly: true,
			})
		}
		return true
	})
	return out
}

func displayName(n *tree.Node) string {
	if label := n.Label(); label != "" {
		return label
	}
	return n.ID
}
