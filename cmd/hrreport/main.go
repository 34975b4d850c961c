package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/cmlabs-hris/hris-report-go/internal/cli"
	"github.com/cmlabs-hris/hris-report-go/internal/config"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/hrapi"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/logging"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-report-go/internal/service/file"
	reportService "github.com/cmlabs-hris/hris-report-go/internal/service/report"
	"golang.org/x/oauth2/clientcredentials"
)

var CLI struct {
	Version kong.VersionFlag
	Debug   bool   `help:"Enable debug logging."`
	Roles   string `help:"Role profile overrides (YAML)." type:"existingfile" env:"ROLE_PROFILES_FILE"`
	Archive bool   `help:"Also archive exports to the configured storage."`

	List   cli.ListCmd   `cmd:"" help:"List the reports available to a role."`
	Query  cli.QueryCmd  `cmd:"" help:"Print one page of a report."`
	Export cli.ExportCmd `cmd:"" help:"Export a report to an Excel or PDF file."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("hrreport"),
		kong.Description("Query and export HR reports from the command line"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{"version": "v1.0.0"},
	)

	logger := logging.NewCLI(os.Stderr, CLI.Debug)

	cfg, err := config.LoadUpstream()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	bg := context.Background()
	var transport *hrapi.Transport
	if cfg.HRAPI.UsesClientCredentials() {
		transport = hrapi.NewClientCredentialsTransport(bg, cfg.HRAPI.BaseURL, clientcredentials.Config{
			ClientID:     cfg.HRAPI.ClientID,
			ClientSecret: cfg.HRAPI.ClientSecret,
			TokenURL:     cfg.HRAPI.TokenURL,
			Scopes:       cfg.HRAPI.Scopes,
		}, cfg.HRAPI.Timeout)
	} else {
		transport = hrapi.NewTransport(cfg.HRAPI.BaseURL, cfg.HRAPI.Token, cfg.HRAPI.Timeout)
	}

	profiles := reportService.DefaultProfiles()
	if CLI.Roles != "" {
		if profiles, err = reportService.LoadProfiles(CLI.Roles); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	var archive file.ArchiveService
	if CLI.Archive {
		archive, err = newArchive(bg, cfg.Storage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	registry := reportService.NewRegistry(cfg.Views.IdleTTL, logger)
	appCtx := &cli.Context{
		Reports: reportService.NewReportService(hrapi.NewClient(transport), registry, profiles, archive, logger),
		Logger:  logger,
		Out:     os.Stdout,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newArchive(ctx context.Context, cfg config.StorageConfig) (file.ArchiveService, error) {
	switch cfg.Type {
	case "local":
		local, err := storage.NewLocalStorage(cfg.BasePath, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return file.NewArchiveService(local), nil
	case "s3":
		s3Storage, err := storage.NewS3Storage(ctx, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return file.NewArchiveService(s3Storage), nil
	}
	return nil, fmt.Errorf("--archive needs STORAGE_TYPE local or s3, got %q", cfg.Type)
}
