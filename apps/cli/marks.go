package main

import (
	"context"
	"fmt"

	"github.com/trezcool/placement/core/marks"
	"github.com/trezcool/placement/core/session"
)

func (cli *commandLine) marksCmd(ctx context.Context, args []string) error {
	sub, rest, err := cli.subcommand(args)
	if err != nil {
		return err
	}
	switch sub {
	case "show":
		return cli.showMarks(ctx, rest)
	case "academic", "industry":
		return cli.awardMarks(ctx, sub, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) showMarks(ctx context.Context, args []string) error {
	fs := cli.flagSet("marks show")
	studentID := fs.String("student", "", "The student whose marks to show (mentors and coordinators).")
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
	fm, err := cli.marks.Get(ctx, id)
	if err != nil {
		return err
	}

	cli.printf("Academic mentor: %s\n", outOf(fm.AcademicMentorMarks, marks.MaxAcademicMarks))
	cli.printf("Industry mentor: %s\n", outOf(fm.IndustryMentorMarks, marks.MaxIndustryMarks))
	if total, ok := fm.Total(); ok {
		cli.printf("Total:           %d/%d\n", total, marks.MaxTotal)
	} else {
		cli.println("Total:           pending")
	}
	return nil
}

func outOf(m *int, max int) string {
	if m == nil {
		return "pending"
	}
	return fmt.Sprintf("%d/%d", *m, max)
}

func (cli *commandLine) awardMarks(ctx context.Context, kind string, args []string) error {
	fs := cli.flagSet("marks " + kind)
	studentID := fs.String("student", "", "The student to mark.")
	value := fs.Int("marks", 0, "The marks awarded.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *studentID == "" || !isSet(fs, "marks") {
		return usage(fs)
	}

	role := session.RoleAcademicMentor
	if kind == "industry" {
		role = session.RoleIndustryMentor
	}
	if _, err := cli.guard.Require(role); err != nil {
		return err
	}

	var (
		fm  marks.FinalMarks
		err error
	)
	if role == session.RoleAcademicMentor {
		fm, err = cli.marks.SubmitAcademic(ctx, marks.AcademicMarks{StudentID: *studentID, Marks: *value})
	} else {
		fm, err = cli.marks.SubmitIndustry(ctx, marks.IndustryMarks{StudentID: *studentID, Marks: *value})
	}
	if err != nil {
		return err
	}
	cli.printf("Marks recorded for %s\n", fm.StudentID)
	if total, ok := fm.Total(); ok {
		cli.printf("Final total: %d/%d\n", total, marks.MaxTotal)
	}
	return nil
}
