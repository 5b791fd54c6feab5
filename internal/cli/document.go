package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formtree/internal/outline"
	"github.com/goliatone/go-formtree/internal/prompt"
	"github.com/goliatone/go-formtree/pkg/editor"
	"github.com/goliatone/go-formtree/pkg/placement"
	"github.com/goliatone/go-formtree/pkg/tree"
)

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a document for structural problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			app.logger.Debug("Document valid", "path", args[0], "nodes", tree.Count(doc.Components))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d nodes)\n", args[0], tree.Count(doc.Components))
			return err
		},
	}
}

func newTreeCmd(app *App) *cobra.Command {
	var hideIDs bool
	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the component outline of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			p := app.printer(cmd, outline.WithIDs(!hideIDs))
			_, err = fmt.Fprint(cmd.OutOrStdout(), p.Document(doc))
			return err
		},
	}
	cmd.Flags().BoolVar(&hideIDs, "no-ids", false, "Hide node ids")
	return cmd
}

func (a *App) printer(cmd *cobra.Command, opts ...outline.Option) *outline.Printer {
	if a.NoColor {
		opts = append(opts, outline.WithColor(false))
	}
	return outline.New(cmd.OutOrStdout(), opts...)
}

func newEvalCmd(app *App) *cobra.Command {
	var (
		valuesJSON string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "eval <file>",
		Short: "Evaluate every computed field against a value snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			values := map[string]any{}
			if valuesJSON != "" {
				if err := json.Unmarshal([]byte(valuesJSON), &values); err != nil {
					return fmt.Errorf("--values: %w", err)
				}
			}
			s := app.session(doc)
			ids := make([]string, 0, len(values))
			for id := range values {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				if err := s.SetValue(id, values[id]); err != nil {
					return err
				}
			}

			results := s.Computed()
			if asJSON {
				type row struct {
					ID      string `json:"id"`
					Label   string `json:"label"`
					Value   any    `json:"value"`
					Display string `json:"display"`
					Error   bool   `json:"error,omitempty"`
				}
				out := make([]row, 0, len(results))
				for _, r := range results {
					out = append(out, row{ID: r.NodeID, Label: r.Label, Value: r.Value, Display: r.Display, Error: r.Err != nil})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, r := range results {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", r.Label, r.NodeID, r.Display); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&valuesJSON, "values", "", "JSON object of field values keyed by node id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

// editFlags are shared by every command that rewrites a document.
type editFlags struct {
	write bool
}

func (f *editFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.write, "write", "w", false, "Write the result back to the file instead of stdout")
}

// runEdit loads path into a session, applies fn and writes the result.
func runEdit(app *App, cmd *cobra.Command, path string, flags *editFlags, fn func(*editor.Session) error) error {
	doc, err := readDocument(cmd, path)
	if err != nil {
		return err
	}
	s := app.session(doc)
	if err := fn(s); err != nil {
		return err
	}
	if !s.Dirty() {
		app.logger.Info("Document unchanged", "path", path)
	}
	return writeDocument(cmd, path, s.Document(), flags.write)
}

func newAddCmd(app *App) *cobra.Command {
	var (
		flags  editFlags
		kind   string
		parent string
		index  int
	)
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a component, interactively unless --kind is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(app, cmd, args[0], &flags, func(s *editor.Session) error {
				if kind != "" {
					_, err := s.AddToParent(tree.Kind(kind), parent, index)
					return err
				}
				if args[0] == "-" {
					return errors.New("interactive add needs a file, not stdin")
				}
				answers, err := prompt.AskAdd(cmd.Context(), app.driver, s.Tree())
				if err != nil {
					return err
				}
				res, err := s.Drop(answers.Drop)
				if err != nil || res.Node == nil {
					return err
				}
				patch := tree.Props{}
				if answers.Label != "" {
					patch[tree.PropLabel] = answers.Label
				}
				if _, ok := res.Node.Props[tree.PropRequired]; ok {
					patch[tree.PropRequired] = answers.Required
				}
				if len(patch) == 0 {
					return nil
				}
				return s.Update(res.Node.ID, patch)
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&kind, "kind", "", "Component kind; skips the prompts")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent node or tab id (root when empty)")
	cmd.Flags().IntVar(&index, "index", -1, "Position in the parent; -1 appends")
	return cmd
}

func newDropCmd(app *App) *cobra.Command {
	var (
		flags  editFlags
		kind   string
		source string
		target string
		edge   string
		zone   string
	)
	cmd := &cobra.Command{
		Use:   "drop <file>",
		Short: "Apply a drag-and-drop gesture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (kind == "") == (source == "") {
				return errors.New("exactly one of --kind or --source is required")
			}
			return runEdit(app, cmd, args[0], &flags, func(s *editor.Session) error {
				drop := placement.Drop{Target: target}
				if kind != "" {
					drop.Source = placement.NewComponent(tree.Kind(kind))
				} else {
					drop.Source = placement.Existing(source)
				}
				if zone != "" {
					t, e, ok := placement.ParseZone(s.Tree(), zone)
					if !ok {
						return fmt.Errorf("unknown drop zone %q", zone)
					}
					drop.Target, drop.Edge = t, e
				} else {
					e, err := placement.ParseEdge(edge)
					if err != nil {
						return err
					}
					drop.Edge = e
				}
				plan, err := placement.Resolve(s.Tree(), drop)
				if err != nil {
					return err
				}
				app.logger.Debug("Drop resolved", "action", plan.Action.String(), "target", plan.Target, "source", drop.Source.String())
				_, err = s.Drop(drop)
				return err
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&kind, "kind", "", "Kind of a new component to drop")
	cmd.Flags().StringVar(&source, "source", "", "Id of an existing node to relocate")
	cmd.Flags().StringVar(&target, "target", "", "Target node or tab id (canvas when empty)")
	cmd.Flags().StringVar(&edge, "edge", "inside", "Edge of the target (inside|left|right|top|bottom)")
	cmd.Flags().StringVar(&zone, "zone", "", "Canvas drop-zone id; overrides --target and --edge")
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	var (
		flags  editFlags
		id     string
		parent string
		index  int
	)
	cmd := &cobra.Command{
		Use:   "move <file>",
		Short: "Move a node to a new parent and position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(app, cmd, args[0], &flags, func(s *editor.Session) error {
				return s.Move(id, parent, index)
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&id, "id", "", "Node to move")
	cmd.Flags().StringVar(&parent, "parent", "", "Target parent or tab id (root when empty)")
	cmd.Flags().IntVar(&index, "index", -1, "Position in the target; -1 appends")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newDuplicateCmd(app *App) *cobra.Command {
	var (
		flags editFlags
		id    string
	)
	cmd := &cobra.Command{
		Use:   "duplicate <file>",
		Short: "Clone a node next to the original",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(app, cmd, args[0], &flags, func(s *editor.Session) error {
				_, err := s.Duplicate(id)
				return err
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&id, "id", "", "Node to duplicate")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	var (
		flags editFlags
		id    string
	)
	cmd := &cobra.Command{
		Use:   "remove <file>",
		Short: "Delete a node and its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(app, cmd, args[0], &flags, func(s *editor.Session) error {
				return s.Remove(id)
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&id, "id", "", "Node to remove")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
