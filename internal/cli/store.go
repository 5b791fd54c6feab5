package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formtree/internal/outline"
	"github.com/goliatone/go-formtree/pkg/grid"
)

func newStoreCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage forms in the SQLite store",
	}
	cmd.AddCommand(newStorePutCmd(app))
	cmd.AddCommand(newStoreGetCmd(app))
	cmd.AddCommand(newStoreListCmd(app))
	cmd.AddCommand(newStoreDeleteCmd(app))
	return cmd
}

func newStorePutCmd(app *App) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Insert or replace a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			if id != "" {
				doc.ID = id
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			saved, err := st.Save(cmd.Context(), doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Store under this id instead of the document's own")
	return cmd
}

func newStoreGetCmd(app *App) *cobra.Command {
	var asTree bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			doc, err := st.Form(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asTree {
				_, err = fmt.Fprint(cmd.OutOrStdout(), app.printer(cmd).Document(doc))
				return err
			}
			return writeDocument(cmd, "-", doc, false)
		},
	}
	cmd.Flags().BoolVar(&asTree, "tree", false, "Print the outline instead of JSON")
	return cmd
}

func newStoreListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			forms, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tNAME\tUPDATED")
			for _, f := range forms {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Code, f.Name, f.UpdatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newStoreDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.logger.Info("Form deleted", "id", args[0])
			return nil
		},
	}
}

func newRefsCmd(app *App) *cobra.Command {
	var (
		depth int
		local bool
	)
	cmd := &cobra.Command{
		Use:   "refs <form-id|file>",
		Short: "Show the row-editor forms a form references, recursively",
		Long: `Expands the grids of a stored form into the tree of forms they open as
row editors. With --local the argument is a document file and only its direct
references are listed, without touching the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				doc, err := readDocument(cmd, args[0])
				if err != nil {
					return err
				}
				for _, ref := range grid.RowEditorRefs(doc.Components) {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", ref.GridID, ref.FormID); err != nil {
						return err
					}
				}
				return nil
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			var opts []grid.ExpandOption
			if depth > 0 {
				opts = append(opts, grid.WithMaxDepth(depth))
			}
			root, err := grid.Expand(cmd.Context(), st, args[0], opts...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), app.printer(cmd, outline.WithIDs(true)).Expansion(root))
			return err
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum expansion depth (0 keeps the default)")
	cmd.Flags().BoolVar(&local, "local", false, "Read a document file and list its direct references")
	return cmd
}
