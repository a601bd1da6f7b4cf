package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
	exportsvc "github.com/trezcool/placement/services/export"
)

func (cli *commandLine) export(ctx context.Context, args []string) (err error) {
	fs := cli.flagSet("export")
	out := fs.String("out", "", "The .xlsx file to write.")
	studentID := fs.String("student", "", "The student whose logbook to export (mentors and coordinators).")
	if err = parse(fs, args); err != nil {
		return err
	}
	if *out == "" {
		return usage(fs)
	}

	s, err := cli.guard.Require()
	if err != nil {
		return err
	}
	id, err := studentOf(s, *studentID)
	if err != nil {
		return err
	}
	student := session.User{ID: id, Name: id}
	if s.User.ID == id {
		student = s.User
	}

	var (
		p       placement.Placement
		exists  bool
		history []logbook.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p, exists, err = cli.placements.Get(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		history, err = cli.logbooks.History(gctx, id)
		return err
	})
	if err = g.Wait(); err != nil {
		return err
	}

	lbs := make([]logbook.Logbook, len(history))
	g, gctx = errgroup.WithContext(ctx)
	for i, sum := range history {
		i, sum := i, sum
		g.Go(func() error {
			lb, _, err := cli.logbooks.Lookup(gctx, id, sum.Month, sum.Year)
			lbs[i] = lb
			return err
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	var pl *placement.Placement
	if exists {
		pl = &p
	}
	f, err := os.Create(*out)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = errors.Wrap(cErr, "closing export file")
		}
	}()
	if err = exportsvc.WriteLogbooks(f, student, pl, lbs); err != nil {
		return err
	}
	cli.printf("Exported %d months to %s\n", len(lbs), *out)
	return nil
}
