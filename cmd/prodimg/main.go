package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/prodimg"
	"github.com/fwojciec/prodimg/amazon"
	"github.com/fwojciec/prodimg/fs"
	"github.com/fwojciec/prodimg/goquery"
	prodimghttp "github.com/fwojciec/prodimg/http"
	"github.com/fwojciec/prodimg/resolve"
	prodimgslog "github.com/fwojciec/prodimg/slog"
	"github.com/fwojciec/prodimg/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	MachineService prodimg.MachineService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("prodimg"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'prodimg --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PRODIMG_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.MachineService = sqlite.NewMachineService(m.DB)
	deps.Machines = m.MachineService

	if cmd == "resolve" {
		deps.Resolver = buildResolver(&cli.Resolve, m.MachineService, stderr)
	}

	return kongCtx.Run(deps)
}

// buildResolver wires the fetcher, asset store, and source waterfall from
// the resolve command's flags.
func buildResolver(c *ResolveCmd, machines prodimg.MachineService, stderr io.Writer) *resolve.Resolver {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var fetcher prodimg.Fetcher = prodimghttp.NewFetcher(
		prodimghttp.WithBaseDelay(time.Duration(c.BaseDelayMS)*time.Millisecond),
		prodimghttp.WithMaxConcurrent(c.MaxConcurrent),
	)
	fetcher = prodimgslog.NewLoggingFetcher(fetcher, logger)

	preview := goquery.NewMetaImageSelector()
	source := func(s prodimg.SourceResolver) prodimg.SourceResolver {
		return prodimgslog.NewLoggingSourceResolver(s, logger)
	}

	vendor := source(&resolve.VendorResolver{
		Fetcher: fetcher,
		Preview: preview,
		Links:   goquery.ExtractProductLink,
	})

	var sources []prodimg.SourceResolver
	if c.Lookup && c.PreferVendor {
		sources = append(sources, vendor)
	}
	sources = append(sources, source(&resolve.StoredResolver{}))
	if c.Lookup {
		var opts []amazon.Option
		if c.AffiliateTag != "" {
			opts = append(opts, amazon.WithAffiliateTag(c.AffiliateTag))
		}
		sources = append(sources, source(&resolve.MarketplaceResolver{
			Searcher: amazon.NewSearcher(fetcher, opts...),
		}))
		if !c.PreferVendor {
			sources = append(sources, vendor)
		}
		if c.Retailers {
			sources = append(sources, source(&resolve.RetailerResolver{
				Fetcher: fetcher,
				Preview: preview,
				Links:   goquery.ExtractProductLink,
			}))
		}
	}
	sources = append(sources, source(&resolve.DetailResolver{
		Fetcher:   fetcher,
		Extractor: goquery.ProductPageExtractors(),
	}))

	return &resolve.Resolver{
		Machines: machines,
		Fetcher:  fetcher,
		Assets:   fs.NewAssetStore(c.AssetDir),
		Sources:  sources,
		Logger:   logger,
	}
}

func defaultDBPath() string {
	if path := os.Getenv("PRODIMG_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "prodimg.db"
	}
	dir := filepath.Join(home, ".prodimg")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "prodimg.db")
}
