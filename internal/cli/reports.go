package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/fsp"
)

// QueryFlags mirror the query parameters of GET /reports/{report}
type QueryFlags struct {
	Employee    string `short:"e" help:"Employee ID the report is about."`
	ProjectName string `name:"project-name" help:"Project the report is scoped to (all scoped roles only)."`
	Month       int    `short:"m" help:"Month (1-12); defaults to the current month."`
	Year        int    `short:"y" help:"Year; defaults to the current year."`

	Search      string `short:"q" help:"Case-insensitive search text."`
	Project     string `help:"Exact project filter."`
	Designation string `help:"Exact designation filter."`
	Status      string `help:"Exact status filter."`
	From        string `help:"Earliest date (YYYY-MM-DD)."`
	To          string `help:"Latest date (YYYY-MM-DD)."`
	Sort        string `short:"s" help:"Column key to sort by."`
	Desc        bool   `help:"Sort descending."`
	Page        int    `short:"p" help:"Page to print." default:"1"`
}

func (f QueryFlags) request() report.QueryRequest {
	req := report.QueryRequest{
		ScopeParams: report.ScopeParams{
			EmployeeID:  f.Employee,
			ProjectName: f.ProjectName,
			Month:       f.Month,
			Year:        f.Year,
		},
		SortKey: f.Sort,
		Page:    f.Page,
	}
	if f.Desc {
		req.Direction = fsp.Desc
	}

	set := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}
	req.Filters = report.FilterUpdate{
		Search:      set(f.Search),
		Project:     set(f.Project),
		Designation: set(f.Designation),
		Status:      set(f.Status),
		DateFrom:    set(f.From),
		DateTo:      set(f.To),
	}
	return req
}

type ListCmd struct {
	Caller
}

func (c *ListCmd) Run(ctx *Context) error {
	p, err := c.Principal()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REPORT\tTITLE\tFILTERS\tACTIONS")
	for _, info := range ctx.Reports.Catalog(p) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Key, info.Title, strings.Join(info.Filters, ","), strings.Join(info.Actions, ","))
	}
	return tw.Flush()
}

type QueryCmd struct {
	Report string `arg:"" help:"Report key, see 'hrreport list'."`
	Caller
	QueryFlags
}

func (c *QueryCmd) Run(ctx *Context) error {
	p, err := c.Principal()
	if err != nil {
		return err
	}

	snap, err := ctx.Reports.Query(context.Background(), p, report.ParseKey(c.Report), c.request())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	headers := make([]string, len(snap.Columns))
	for i, col := range snap.Columns {
		headers[i] = strings.ToUpper(col.Header)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range snap.Rows {
		fmt.Fprintln(tw, strings.Join(row.Cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, fig := range snap.Summary {
		fmt.Fprintf(ctx.Out, "%s: %s\n", fig.Label, fig.Value)
	}
	for _, section := range snap.Sections {
		if section.Error != "" {
			fmt.Fprintf(ctx.Out, "%s: %s\n", section.Name, section.Error)
		}
	}
	fmt.Fprintf(ctx.Out, "Page %d of %d (%d records)\n", snap.CurrentPage, snap.TotalPages, snap.TotalItems)
	return nil
}

type ExportCmd struct {
	Report string `arg:"" help:"Report key, see 'hrreport list'."`
	Format string `short:"f" help:"Export format (xlsx|pdf)." default:"xlsx" enum:"xlsx,pdf"`
	Out    string `short:"o" help:"Output directory." default:"." type:"existingdir"`
	Caller
	QueryFlags
}

func (c *ExportCmd) Run(ctx *Context) error {
	p, err := c.Principal()
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	art, err := ctx.Reports.ExportReport(context.Background(), p, report.ParseKey(c.Report), c.request(), format)
	if err != nil {
		return err
	}

	path := filepath.Join(c.Out, art.FileName)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	ctx.Logger.Info("Export written", "path", path, "rows", art.RowCount, "format", string(format))
	if art.ArchiveURL != "" {
		ctx.Logger.Info("Export archived", "url", art.ArchiveURL)
	}
	return nil
}
