package main

import (
	"context"
	"time"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
)

func (cli *commandLine) placementCmd(ctx context.Context, args []string) error {
	sub, rest, err := cli.subcommand(args)
	if err != nil {
		return err
	}
	switch sub {
	case "show":
		return cli.showPlacement(ctx, rest)
	case "create":
		return cli.createPlacement(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) showPlacement(ctx context.Context, args []string) error {
	fs := cli.flagSet("placement show")
	studentID := fs.String("student", "", "The student whose placement to show (mentors and coordinators).")
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
	p, exists, err := cli.placements.Get(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		cli.println("No placement recorded yet.")
		return nil
	}

	cli.printf("Company:  %s\n", p.CompanyName)
	cli.printf("Period:   %s to %s (%d months)\n", p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout), p.TotalMonths())
	cli.printf("Mentor:   %s <%s>", p.MentorName, p.MentorEmail)
	if p.MentorPhone != "" {
		cli.printf(" %s", p.MentorPhone)
	}
	cli.println()
	for m := 1; m <= p.TotalMonths(); m++ {
		month, year := p.MonthOf(m)
		cli.printf("  month %d: %s %d\n", m, month, year)
	}
	return nil
}

func (cli *commandLine) createPlacement(ctx context.Context, args []string) error {
	fs := cli.flagSet("placement create")
	company := fs.String("company", "", "Company name.")
	start := fs.String("start", "", "First day of the placement (YYYY-MM-DD).")
	end := fs.String("end", "", "Last day of the placement (YYYY-MM-DD).")
	mentor := fs.String("mentor", "", "Industry mentor's name.")
	mentorEmail := fs.String("mentor-email", "", "Industry mentor's email.")
	mentorPhone := fs.String("mentor-phone", "", "Industry mentor's phone (optional).")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NFlag() == 0 {
		return usage(fs)
	}

	s, err := cli.guard.Require(session.RoleStudent)
	if err != nil {
		return err
	}
	startDate, err := parseDate("startDate", *start)
	if err != nil {
		return err
	}
	endDate, err := parseDate("endDate", *end)
	if err != nil {
		return err
	}

	p, err := cli.placements.Create(ctx, placement.NewPlacement{
		StudentID:   s.User.ID,
		CompanyName: *company,
		StartDate:   startDate,
		EndDate:     endDate,
		MentorName:  *mentor,
		MentorEmail: *mentorEmail,
		MentorPhone: *mentorPhone,
	})
	if err != nil {
		return err
	}
	cli.printf("Placement at %s recorded: %d months of logbook to fill\n", p.CompanyName, p.TotalMonths())
	return nil
}

// parseDate reads a YYYY-MM-DD flag; an empty value is left for validation to report.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: field, Error: "use the YYYY-MM-DD format"})
	}
	return t, nil
}
