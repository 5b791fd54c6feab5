package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formtree"
	pkgopenapi "github.com/goliatone/go-formtree/pkg/openapi"
	"github.com/goliatone/go-formtree/pkg/scaffold"
)

func newScaffoldCmd(app *App) *cobra.Command {
	var (
		source    string
		operation string
		list      bool
		save      bool
		output    string
	)
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Build a form from the request body of an OpenAPI operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := pkgopenapi.ParseSource(source)
			if err != nil {
				return err
			}
			var loaderOpts []pkgopenapi.LoaderOption
			if app.cfg.Scaffold.AllowHTTP {
				loaderOpts = append(loaderOpts, pkgopenapi.WithHTTPFallback(app.cfg.Scaffold.HTTPTimeout))
			}
			scaffoldOpts := []scaffold.Option{scaffold.WithLogger(app.logger)}

			if list {
				doc, err := formtree.NewLoader(loaderOpts...).Load(ctx, src)
				if err != nil {
					return err
				}
				ops, err := scaffold.Operations(ctx, doc, scaffoldOpts...)
				if err != nil {
					return err
				}
				for _, op := range ops {
					marker := " "
					if op.HasBody {
						marker = "*"
					}
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %-7s %-30s %s\n", marker, op.Method, op.Path, op.ID); err != nil {
						return err
					}
				}
				return nil
			}

			if operation == "" {
				return fmt.Errorf("--operation is required (use --list to see operations)")
			}
			doc, err := formtree.Scaffold(ctx, src, operation, loaderOpts, scaffoldOpts...)
			if err != nil {
				return err
			}
			if save {
				st, err := app.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				saved, err := st.Save(ctx, doc)
				if err != nil {
					return err
				}
				app.logger.Info("Scaffolded form stored", "id", saved.ID, "operationId", operation)
				doc = saved
			}
			if output != "" {
				return writeDocument(cmd, output, doc, true)
			}
			return writeDocument(cmd, "-", doc, false)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "OpenAPI document path or URL")
	cmd.Flags().StringVar(&operation, "operation", "", "Operation id, or method:path for operations without one")
	cmd.Flags().BoolVar(&list, "list", false, "List the operations of the document")
	cmd.Flags().BoolVar(&save, "save", false, "Store the generated form")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the form to a file instead of stdout")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
