package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/session"
)

var errNotInQueue = errors.New("this logbook is not awaiting your verification")

func (cli *commandLine) verifyCmd(ctx context.Context, args []string) error {
	sub, rest, err := cli.subcommand(args)
	if err != nil {
		return err
	}
	switch sub {
	case "pending":
		return cli.pendingLogbooks(ctx)
	case "approve":
		return cli.approveLogbook(ctx, rest)
	case "reject":
		return cli.rejectLogbook(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) pendingLogbooks(ctx context.Context) error {
	if _, err := cli.guard.Require(session.MentorRoles...); err != nil {
		return err
	}
	lbs, err := cli.logbooks.Pending(ctx)
	if err != nil {
		return err
	}
	if len(lbs) == 0 {
		cli.println("Nothing awaits your verification.")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTUDENT\tMONTH\tYEAR\tWEEKS\tSIGNED\tUPDATED")
	for _, lb := range lbs {
		signed := "no"
		if lb.SignedPDFPath != "" {
			signed = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d/%d\t%s\t%s\n",
			lb.ID, lb.StudentID, lb.Month, lb.Year, lb.FilledWeeks(), logbook.WeeksPerMonth, signed, lb.UpdatedAt.Format(dateLayout))
	}
	return w.Flush()
}

// verification opens the mentor view over a logbook of the caller's queue.
func (cli *commandLine) verification(ctx context.Context, id string) (*logbook.Verification, error) {
	if _, err := cli.guard.Require(session.MentorRoles...); err != nil {
		return nil, err
	}
	lbs, err := cli.logbooks.Pending(ctx)
	if err != nil {
		return nil, err
	}
	for _, lb := range lbs {
		if lb.ID == id {
			return logbook.NewVerification(cli.logbooks, lb), nil
		}
	}
	return nil, errNotInQueue
}

func (cli *commandLine) approveLogbook(ctx context.Context, args []string) error {
	fs := cli.flagSet("verify approve")
	id := fs.String("id", "", "The logbook to approve.")
	signed := fs.String("signed", "", "Path to the signed logbook PDF.")
	comments := fs.String("comments", "", "Comments for the student.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" || *signed == "" {
		return usage(fs)
	}

	file, err := document.ReadFile(*signed)
	if err != nil {
		return err
	}
	v, err := cli.verification(ctx, *id)
	if err != nil {
		return err
	}
	if err = v.Choose(logbook.ActionApprove); err != nil {
		return err
	}
	if err = v.UploadSigned(ctx, file); err != nil {
		return err
	}
	v.SetComments(*comments)
	if err = v.Confirm(ctx); err != nil {
		return err
	}

	lb := v.Logbook()
	cli.printf("Month %d of %s %s\n", lb.Month, lb.StudentID, lb.Status)
	return nil
}

func (cli *commandLine) rejectLogbook(ctx context.Context, args []string) error {
	fs := cli.flagSet("verify reject")
	id := fs.String("id", "", "The logbook to reject.")
	reason := fs.String("reason", "", "Why the month is sent back (required).")
	comments := fs.String("comments", "", "Comments for the student.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" || *reason == "" {
		return usage(fs)
	}

	v, err := cli.verification(ctx, *id)
	if err != nil {
		return err
	}
	if err = v.Choose(logbook.ActionReject); err != nil {
		return err
	}
	v.SetReason(*reason)
	v.SetComments(*comments)
	if err = v.Confirm(ctx); err != nil {
		return err
	}

	lb := v.Logbook()
	cli.printf("Month %d of %s %s\n", lb.Month, lb.StudentID, lb.Status)
	return nil
}
