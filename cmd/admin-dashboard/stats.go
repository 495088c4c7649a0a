package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/Sternrassler/swecha-admin/internal/config"
	"github.com/Sternrassler/swecha-admin/pkg/dashboard"
	"github.com/Sternrassler/swecha-admin/pkg/stats"
)

func runStats(ctx context.Context, cfg *config.Config, top int, progress bool, out, errOut io.Writer) error {
	if cfg.Backend.Token == "" {
		return fmt.Errorf("ADMIN_TOKEN is required")
	}

	scfg := cfg.Session()
	if progress {
		scfg.Enrich.OnProgress = func(done, total int) {
			fmt.Fprintf(errOut, "\rLooking up contributions: %d/%d", done, total)
			if done == total {
				fmt.Fprintln(errOut)
			}
		}
	}

	s, cleanup, err := newSession(ctx, cfg, scfg)
	if err != nil {
		return err
	}
	defer cleanup()
	s.UseToken(cfg.Backend.Token)

	if !s.Validate(ctx) {
		return fmt.Errorf("ADMIN_TOKEN was rejected by the backend")
	}

	svc := dashboard.New(s)
	summary, err := svc.UserStatistics(ctx)
	if err != nil {
		return fmt.Errorf("user statistics: %w", err)
	}
	report, err := svc.ActivityReport(ctx, top)
	if err != nil {
		return fmt.Errorf("activity report: %w", err)
	}

	printSummary(out, summary)
	printReport(out, report)
	return nil
}

func printSummary(out io.Writer, s stats.UserSummary) {
	fmt.Fprintf(out, "Users: %d (active %d, inactive %d, %.1f%% active)\n",
		s.Total, s.Active, s.Inactive, s.ActivePercent)

	buckets := make([]string, 0, len(s.Gender))
	for bucket := range s.Gender {
		buckets = append(buckets, bucket)
	}
	sort.Strings(buckets)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GENDER\tUSERS\tSHARE")
	for _, bucket := range buckets {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", bucket, s.Gender[bucket], s.GenderPercent[bucket])
	}
	tw.Flush()
}

func printReport(out io.Writer, r *dashboard.ActivityReport) {
	fmt.Fprintf(out, "\nContributing users: %d of %d (%.1f%%)\n", r.ActiveUsers, r.Users, r.ActivityRate)
	if r.FailedLookups > 0 {
		fmt.Fprintf(out, "Contribution lookups failed for %d users (counted as 0)\n", r.FailedLookups)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tPHONE\tCONTRIBUTIONS")
	for i, c := range r.TopContributors {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i+1, c.Name, c.Phone, c.Contributions)
	}
	tw.Flush()
}
