// Command cartctl inspects the catalog and replays scripted cart sessions
// without running the services.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MiniCart/internal/catalog"
	"MiniCart/internal/replay"
	"MiniCart/internal/view"
	"MiniCart/pkg/kit"
)

type rootOptions struct {
	catalogURL string
	logLevel   string
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Inspect the dessert catalog and replay cart scripts",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.catalogURL, "catalog-url", os.Getenv("CATALOG_URL"), "catalog service base URL; empty uses the built-in catalog")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "log level")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "catalog request timeout")

	root.AddCommand(newCatalogCmd(opts), newReplayCmd(opts))
	return root
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := opts.products(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(products)
			}
			return writeCatalog(cmd.OutOrStdout(), products)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newReplayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Run a YAML script of cart intents and print every rendered cart",
		Long:  "Run a YAML script of cart intents against a fresh cart. Use - to read the script from stdin.\nExits non-zero when a step's expect block does not hold.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := readScript(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			products, err := opts.products(cmd.Context())
			if err != nil {
				return err
			}

			log, err := kit.NewLogger("cartctl", opts.logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			out, runErr := replay.Run(script, products, log.With(zap.String("script", args[0])))
			if err := replay.Write(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			return runErr
		},
	}
}

func (o *rootOptions) products(ctx context.Context) ([]catalog.Product, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var store catalog.Store = catalog.NewMemStore()
	if o.catalogURL != "" {
		store = catalog.NewClient(o.catalogURL)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return store.List(ctx)
}

func readScript(stdin io.Reader, path string) (replay.Script, error) {
	if path == "-" {
		return replay.Parse(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return replay.Script{}, err
	}
	defer f.Close()
	return replay.Parse(f)
}

func writeCatalog(w io.Writer, products []catalog.Product) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, view.Money(p.Price, ""))
	}
	return tw.Flush()
}
