package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/session"
	"github.com/trezcool/placement/core/submission"
)

func (cli *commandLine) submissionsCmd(ctx context.Context, args []string) error {
	sub, rest, err := cli.subcommand(args)
	if err != nil {
		return err
	}
	switch sub {
	case "status":
		return cli.submissionStatus(ctx, rest)
	case "marksheet":
		return cli.uploadMarksheet(ctx, rest)
	case "presentation":
		return cli.uploadPresentation(ctx, rest)
	case "notify":
		return cli.notifyCoordinator(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) submissionStatus(ctx context.Context, args []string) error {
	fs := cli.flagSet("submissions status")
	studentID := fs.String("student", "", "The student whose submissions to show (mentors and coordinators).")
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

	if err = cli.submissions.Unlocked(ctx, id); err != nil {
		cli.printf("Final stage locked: %s\n", core.UserMessage(err, ""))
	} else {
		cli.println("Final stage unlocked")
	}
	st, err := cli.submissions.Status(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ARTIFACT\tATTEMPTS\tLEFT\tSUBMITTED")
	for _, kind := range submission.Kinds {
		sb := st.Get(kind)
		attempts, submitted := 0, "-"
		if sb.Submitted() {
			attempts, submitted = sb.Attempts, sb.SubmittedAt.Format(dateLayout)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", kind, attempts, sb.AttemptsLeft(), submitted)
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if st.Complete() {
		cli.println("Everything is in; notify the coordinator with `submissions notify`.")
	}
	return nil
}

func (cli *commandLine) uploadMarksheet(ctx context.Context, args []string) error {
	fs := cli.flagSet("submissions marksheet")
	kind := fs.String("kind", "", "academic_marksheet or industry_marksheet.")
	path := fs.String("file", "", "Path to the marksheet PDF.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *kind == "" || *path == "" {
		return usage(fs)
	}

	s, err := cli.guard.Require(session.RoleStudent)
	if err != nil {
		return err
	}
	file, err := document.ReadFile(*path)
	if err != nil {
		return err
	}
	sb, err := cli.submissions.UploadMarksheet(ctx, s.User.ID, submission.Kind(*kind), file)
	if err != nil {
		return err
	}
	cli.printUploaded(sb)
	return nil
}

func (cli *commandLine) uploadPresentation(ctx context.Context, args []string) error {
	fs := cli.flagSet("submissions presentation")
	path := fs.String("file", "", "Path to the presentation PDF.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return usage(fs)
	}

	s, err := cli.guard.Require(session.RoleStudent)
	if err != nil {
		return err
	}
	file, err := document.ReadFile(*path)
	if err != nil {
		return err
	}
	sb, err := cli.submissions.UploadPresentation(ctx, s.User.ID, file)
	if err != nil {
		return err
	}
	cli.printUploaded(sb)
	return nil
}

func (cli *commandLine) printUploaded(sb submission.Submission) {
	cli.printf("Uploaded %s (attempt %d of %d)\n", sb.Kind, sb.Attempts, submission.MaxAttempts)
}

func (cli *commandLine) notifyCoordinator(ctx context.Context) error {
	s, err := cli.guard.Require(session.RoleStudent)
	if err != nil {
		return err
	}
	if err = cli.submissions.NotifyCoordinator(ctx, s.User.ID); err != nil {
		return err
	}
	cli.println("Coordinator notified")
	return nil
}
