package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/placement"
	ts "github.com/goliatone/go-formtree/pkg/testsupport"
	"github.com/goliatone/go-formtree/pkg/tree"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool

	inputPos   int
	selectPos  int
	confirmPos int

	selectMessages []string
	lastOptions    [][]string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selectMessages = append(s.selectMessages, cfg.Message)
	s.lastOptions = append(s.lastOptions, cfg.Options)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(context.Context, string) error { return nil }

func sampleTree() tree.Tree {
	return tree.Tree{
		ts.Input("name", "Name"),
		ts.Tabs("tabs", ts.Tab("t1", "General", ts.Input("inner", "Inner"))),
	}
}

func TestAskAddBesideNode(t *testing.T) {
	t.Parallel()

	d := &stubDriver{
		selectIdx: []int{8, 1, 3}, // email, "Name", right
		inputs:    []string{"  Work email "},
		confirm:   []bool{true},
	}
	got, err := AskAdd(context.Background(), d, sampleTree())
	if err != nil {
		t.Fatalf("AskAdd: %v", err)
	}
	want := AddAnswers{
		Drop:     placement.Drop{Target: "name", Edge: placement.Right, Source: placement.NewComponent(tree.KindEmail)},
		Label:    "Work email",
		Required: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}

	wantTargets := []string{
		"(end of form)",
		"Name [input]",
		"tabs [tabs]",
		`  tab "General"`,
		"  Inner [input]",
	}
	if diff := cmp.Diff(wantTargets, d.lastOptions[1]); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bottom", "top", "left", "right"}, d.lastOptions[2]); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestAskAddIntoTabSkipsEdgeAndLabel(t *testing.T) {
	t.Parallel()

	d := &stubDriver{selectIdx: []int{15, 3}} // divider, tab "General"
	got, err := AskAdd(context.Background(), d, sampleTree())
	if err != nil {
		t.Fatalf("AskAdd: %v", err)
	}
	want := AddAnswers{Drop: placement.Drop{Target: "t1", Edge: placement.Inside, Source: placement.NewComponent(tree.KindDivider)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
	if len(d.selectMessages) != 2 {
		t.Fatalf("expected no edge question, got %v", d.selectMessages)
	}
}

func TestAskAddContainerOffersInside(t *testing.T) {
	t.Parallel()

	d := &stubDriver{selectIdx: []int{0, 2, 0}, inputs: []string{"Title"}, confirm: []bool{false}}
	got, err := AskAdd(context.Background(), d, sampleTree())
	if err != nil {
		t.Fatalf("AskAdd: %v", err)
	}
	if got.Drop.Target != "tabs" || got.Drop.Edge != placement.Inside {
		t.Fatalf("expected inside tabs, got %+v", got.Drop)
	}
}

func TestAskAddRejectsBlankLabel(t *testing.T) {
	t.Parallel()

	d := &stubDriver{selectIdx: []int{0, 0}, inputs: []string{"   "}}
	if _, err := AskAdd(context.Background(), d, sampleTree()); err == nil {
		t.Fatalf("expected blank label to be rejected")
	}
}
