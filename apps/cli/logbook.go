package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/session"
)

func (cli *commandLine) logbookCmd(ctx context.Context, args []string) error {
	sub, rest, err := cli.subcommand(args)
	if err != nil {
		return err
	}
	switch sub {
	case "history":
		return cli.logbookHistory(ctx, rest)
	case "show":
		return cli.showLogbook(ctx, rest)
	case "entry":
		return cli.saveEntry(ctx, rest)
	case "submit":
		return cli.submitLogbook(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

// editor loads the student's editor on month (the default view when 0).
func (cli *commandLine) editor(ctx context.Context, studentID string, month int, confirm logbook.Confirmer) (*logbook.Editor, error) {
	ed := logbook.NewEditor(cli.logbooks, cli.placements, confirm, studentID)
	if err := ed.Load(ctx); err != nil {
		return nil, err
	}
	if month > 0 && month != ed.Month() {
		if err := ed.SelectMonth(ctx, month); err != nil {
			return nil, err
		}
	}
	return ed, nil
}

func (cli *commandLine) logbookHistory(ctx context.Context, args []string) error {
	fs := cli.flagSet("logbook history")
	studentID := fs.String("student", "", "The student whose logbook to list (mentors and coordinators).")
	if err := parse(fs, args); err != nil {
		return err
	}

	s, err := cli.guard.Require()
	if err != nil {
		return err
	}
	id, err := studentOf(s, *studentID)
	if err != nil {
		return err
	}
	tl, err := cli.placements.Timeline(ctx, id)
	if err != nil {
		return err
	}
	history, err := cli.logbooks.History(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tYEAR\tSTATUS\tID")
	for _, slot := range logbook.MonthSlots(history, tl) {
		status := string(slot.Status)
		switch {
		case slot.Locked:
			status = "Locked"
		case !slot.Exists:
			status = "Not started"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", slot.Month, slot.Year, status, slot.LogbookID)
	}
	return w.Flush()
}

func (cli *commandLine) showLogbook(ctx context.Context, args []string) error {
	fs := cli.flagSet("logbook show")
	month := fs.Int("month", 0, "Placement month to show (defaults to the latest approved month).")
	studentID := fs.String("student", "", "The student whose logbook to show (mentors and coordinators).")
	if err := parse(fs, args); err != nil {
		return err
	}

	s, err := cli.guard.Require()
	if err != nil {
		return err
	}

	if s.User.IsStudent() {
		ed, err := cli.editor(ctx, s.User.ID, *month, nil)
		if err != nil {
			return err
		}
		lb, exists := ed.Current()
		cli.printLogbook(ed.Month(), ed.Year(), lb, exists)
		if ed.Editable() {
			cli.printf("Editable: yes (%d of %d weeks filled)\n", lb.FilledWeeks(), logbook.WeeksPerMonth)
		}
		return nil
	}

	id, err := studentOf(s, *studentID)
	if err != nil {
		return err
	}
	if *month < 1 {
		return usage(fs)
	}
	tl, err := cli.placements.Timeline(ctx, id)
	if err != nil {
		return err
	}
	if *month > tl.TotalMonths {
		return logbook.ErrMonthOutOfRange
	}
	year := tl.YearOf(*month)
	lb, exists, err := cli.logbooks.Lookup(ctx, id, *month, year)
	if err != nil {
		return err
	}
	cli.printLogbook(*month, year, lb, exists)
	return nil
}

func (cli *commandLine) printLogbook(month, year int, lb logbook.Logbook, exists bool) {
	cli.printf("Month %d (%d)\n", month, year)
	if !exists {
		cli.println("Status: not started")
		return
	}
	cli.printf("Status: %s\n", lb.Status)
	if lb.MentorComments != "" {
		cli.printf("Mentor comments: %s\n", lb.MentorComments)
	}
	if lb.RejectionReason != "" {
		cli.printf("Rejection reason: %s\n", lb.RejectionReason)
	}
	for n := 1; n <= logbook.WeeksPerMonth; n++ {
		w, ok := lb.Week(n)
		if !ok {
			cli.printf("\nWeek %d: empty\n", n)
			continue
		}
		cli.printf("\nWeek %d\n", n)
		cli.printf("  Activities:         %s\n", w.Activities)
		cli.printf("  Technical skills:   %s\n", w.TechnicalSkills)
		cli.printf("  Soft skills:        %s\n", w.SoftSkills)
		cli.printf("  Trainings received: %s\n", w.TrainingsReceived)
	}
}

func (cli *commandLine) saveEntry(ctx context.Context, args []string) error {
	fs := cli.flagSet("logbook entry")
	month := fs.Int("month", 0, "Placement month (1-based).")
	week := fs.Int("week", 0, "Week of the month (1-4).")
	activities := fs.String("activities", "", "What you worked on (required).")
	technical := fs.String("technical", "", "Technical skills gained.")
	soft := fs.String("soft", "", "Soft skills gained.")
	trainings := fs.String("trainings", "", "Trainings received.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *month < 1 || *week < 1 {
		return usage(fs)
	}

	s, err := cli.guard.Require(session.RoleStudent)
	if err != nil {
		return err
	}
	ed, err := cli.editor(ctx, s.User.ID, *month, nil)
	if err != nil {
		return err
	}
	form, err := ed.OpenEntry(*week)
	if err != nil {
		return err
	}

	// flags left out keep what was saved before
	in := logbook.EntryInput{
		Activities:        form.Initial.Activities,
		TechnicalSkills:   form.Initial.TechnicalSkills,
		SoftSkills:        form.Initial.SoftSkills,
		TrainingsReceived: form.Initial.TrainingsReceived,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "activities":
			in.Activities = *activities
		case "technical":
			in.TechnicalSkills = *technical
		case "soft":
			in.SoftSkills = *soft
		case "trainings":
			in.TrainingsReceived = *trainings
		}
	})
	if err = ed.SaveWeek(ctx, in); err != nil {
		return err
	}

	lb, _ := ed.Current()
	cli.printf("Saved week %d of month %d (%d of %d weeks filled)\n", *week, ed.Month(), lb.FilledWeeks(), logbook.WeeksPerMonth)
	return nil
}

func (cli *commandLine) submitLogbook(ctx context.Context, args []string) error {
	fs := cli.flagSet("logbook submit")
	month := fs.Int("month", 0, "Placement month to submit.")
	yes := fs.Bool("yes", false, "Do not ask for confirmation.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *month < 1 {
		return usage(fs)
	}

	s, err := cli.guard.Require(session.RoleStudent)
	if err != nil {
		return err
	}
	confirm := logbook.ConfirmFunc(cli.confirm)
	if *yes {
		confirm = func(string) bool { return true }
	}
	ed, err := cli.editor(ctx, s.User.ID, *month, confirm)
	if err != nil {
		return err
	}

	submitted, err := ed.Submit(ctx)
	if err != nil {
		return err
	}
	if !submitted {
		cli.println("Submission cancelled")
		return nil
	}
	cli.printf("Month %d submitted for approval\n", ed.Month())
	if next := ed.Unlocked(); next <= ed.Timeline().TotalMonths {
		cli.printf("Month %d is now open\n", next)
	}
	return nil
}
