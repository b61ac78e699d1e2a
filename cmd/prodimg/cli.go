package main

import (
	"context"
	"io"

	"github.com/fwojciec/prodimg"
	"github.com/fwojciec/prodimg/resolve"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Machines prodimg.MachineService
	Resolver *resolve.Resolver
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Resolve ResolveCmd `cmd:"" help:"Resolve product images for catalog machines"`
	List    ListCmd    `cmd:"" help:"List machines and their asset status"`
}

// ResolveCmd is the "resolve" subcommand.
type ResolveCmd struct {
	AssetDir string `required:"" env:"IMAGE_ASSET_DIR" help:"Directory where image files are written"`
	Limit    int    `default:"200" help:"Max machines to process"`
	Brand    string `env:"IMAGE_FILTER_BRAND" help:"Only process brands containing this substring"`
	Model    string `env:"IMAGE_FILTER_MODEL" help:"Only process models containing this substring"`

	Lookup       bool `help:"Search the marketplace for products when no image is known"`
	PreferVendor bool `help:"Try manufacturer sites before the marketplace (requires --lookup)"`
	Retailers    bool `help:"Also try retailer sites (requires --lookup)"`

	RefreshBad     bool `help:"Re-resolve machines whose current image URL looks like a placeholder or sprite"`
	RebuildMissing bool `help:"Re-download when a recorded image file is missing on disk"`
	Force          bool `help:"Process all matched machines regardless of state"`
	Reset          bool `env:"RESET_ALL_IMAGES" help:"Destructive: delete all stored assets and recorded paths before resolving"`

	BaseDelayMS   int    `name:"base-delay-ms" default:"250" env:"BASE_DELAY_MS" help:"Base politeness delay between requests in milliseconds"`
	MaxConcurrent int    `default:"6" env:"MAX_CONCURRENT_FETCHES" help:"Global in-flight fetch cap"`
	AffiliateTag  string `env:"AMAZON_AFFILIATE_TAG" help:"Affiliate tag appended to marketplace product URLs"`

	Verbose bool `short:"v" help:"Enable debug logging"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Brand string `help:"Only list brands containing this substring"`
	Model string `help:"Only list models containing this substring"`
	Limit int    `default:"200" help:"Max machines to list"`
}
