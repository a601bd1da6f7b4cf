package main

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/placement/core/logbook"
)

func (cli *commandLine) pdfCmd(ctx context.Context, args []string) error {
	sub, rest, err := cli.subcommand(args)
	if err != nil {
		return err
	}

	fs := cli.flagSet("pdf " + sub)
	out := fs.String("out", "", "Where to save the PDF (defaults to the name the server gives).")
	open := fs.Bool("open", false, "Preview the PDF in the system viewer.")
	var id, studentID *string
	switch sub {
	case "signed":
		id = fs.String("id", "", "The logbook whose signed copy to download.")
	case "consolidated":
		studentID = fs.String("student", "", "The student whose logbook to download (mentors and coordinators).")
	default:
		cli.printUsage()
		return errHelp
	}
	if err = parse(fs, rest); err != nil {
		return err
	}

	s, err := cli.guard.Require()
	if err != nil {
		return err
	}
	var vw *logbook.Viewer
	if id != nil {
		if *id == "" {
			return usage(fs)
		}
		vw = logbook.NewSignedViewer(cli.logbooks, *id, cli.previews)
	} else {
		student, err := studentOf(s, *studentID)
		if err != nil {
			return err
		}
		vw = logbook.NewConsolidatedViewer(cli.logbooks, student, cli.previews)
	}
	defer vw.Close()

	if err = vw.Load(ctx); err != nil {
		return err
	}
	blob := vw.Blob()

	path := *out
	if path == "" {
		path = blob.Filename
	}
	if path == "" {
		path = "logbook.pdf"
	}
	if err = os.WriteFile(path, blob.Data, 0o644); err != nil {
		return errors.Wrap(err, "saving pdf")
	}
	cli.printf("Saved %s (%d bytes)\n", path, blob.Size())

	if *open {
		preview, err := vw.Handle().Path()
		if err != nil {
			return err
		}
		if err = openFunc(preview); err != nil {
			return err
		}
		promptFunc(cli.out, "Press Enter to close the preview")
	}
	return nil
}
