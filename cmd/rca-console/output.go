package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/services"
)

func printView(w io.Writer, view services.View) {
	switch view.Status {
	case services.StatusEmptyContent:
		fmt.Fprintln(w, "Ticket has no short description or description to search with.")
		return
	case services.StatusNoMatch:
		fmt.Fprintln(w, "No matching playbooks found.")
		return
	}

	fmt.Fprintf(w, "Query: %s (%s)\n\n", view.Query, view.SearchType)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMATCH\tCONFIDENCE\tUSAGE\tTITLE")
	for _, c := range view.Candidates {
		fmt.Fprintf(tw, "%s\t%d%%\t%s\t%s\t%s\n", c.PlaybookID, c.MatchPercentage, c.Confidence, c.Usage, c.Title)
	}
	tw.Flush()
}

func printGuidance(w io.Writer, reply services.GuidanceReply) {
	fmt.Fprintf(w, "Question: %s\n\n", reply.Question)
	for i, r := range reply.Results {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(w, "%s [%s] %s: %s\n", marker, r.PlaybookID, r.PlaybookTitle, r.TriggerTitle)
		fmt.Fprintf(w, "    Action: %s\n", r.Action)
		if r.ExpectedOutcome != "" {
			fmt.Fprintf(w, "    Expected: %s\n", r.ExpectedOutcome)
		}
	}
	if !reply.UsageIncremented {
		fmt.Fprintln(w, "\n(usage counter was not updated)")
	}
}

func printCatalog(w io.Writer, page models.CatalogPage) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tUSED\tTAGS\tTITLE")
	for _, pb := range page.Playbooks {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", pb.ID, pb.Priority, pb.Usage.TimesUsed, strings.Join(pb.Tags, ","), pb.Title)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nPage %d of %d (%d playbooks)\n", page.Page, max(page.TotalPages, 1), page.Total)
}

func printPlaybook(w io.Writer, pb models.Playbook) {
	fmt.Fprintf(w, "%s  %s\n", pb.ID, pb.Title)
	if pb.Priority != "" {
		fmt.Fprintf(w, "Priority: %s\n", pb.Priority)
	}
	if len(pb.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(pb.Tags, ", "))
	}
	fmt.Fprintf(w, "Used: %d times\n", pb.Usage.TimesUsed)
	if pb.Description != "" {
		fmt.Fprintf(w, "\n%s\n", pb.Description)
	}
	if len(pb.Steps) > 0 {
		fmt.Fprintln(w, "\nSteps:")
		for _, s := range pb.Steps {
			fmt.Fprintf(w, "  %d. %s\n", s.StepID, s.Action)
			if s.ExpectedOutcome != "" {
				fmt.Fprintf(w, "     -> %s\n", s.ExpectedOutcome)
			}
		}
	}
	if pb.Outcome != "" {
		fmt.Fprintf(w, "\nOutcome: %s\n", pb.Outcome)
	}
}
