package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/marks"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
	"github.com/trezcool/placement/core/submission"
)

const dateLayout = "2006-01-02"

var (
	readPasswordFunc = term.ReadPassword // mockable
	promptFunc       = readLine          // mockable
	openFunc         = openInViewer      // mockable

	errHelp            = errors.New("help provided")
	errStudentRequired = errors.New("-student is required")
)

type commandLine struct {
	conf        *core.Config
	logger      core.Logger
	out         io.Writer
	guard       *session.Guard
	sessions    *session.Service
	placements  *placement.Service
	logbooks    *logbook.Service
	submissions *submission.Service
	marks       *marks.Service
	previews    *document.Previews
}

func (cli *commandLine) printUsage() {
	cli.println("Usage: placement [-api URL] [-session PATH] COMMAND [ARGS]")
	cli.println()
	cli.println("Account:")
	cli.println("  login -email EMAIL                                  - log in (the password is prompted next)")
	cli.println("  logout                                              - forget the stored session")
	cli.println("  whoami                                              - show the logged-in user")
	cli.println("Placement:")
	cli.println("  placement show [-student ID]                        - show the recorded placement")
	cli.println("  placement create -company -start -end -mentor -mentor-email [-mentor-phone]")
	cli.println("Logbook:")
	cli.println("  logbook history [-student ID]                       - list the months and their status")
	cli.println("  logbook show [-month N] [-student ID]               - show one month")
	cli.println("  logbook entry -month N -week N -activities TEXT ... - save one week")
	cli.println("  logbook submit -month N [-yes]                      - submit a month for approval")
	cli.println("Verification:")
	cli.println("  verify pending                                      - list logbooks awaiting your decision")
	cli.println("  verify approve -id ID -signed FILE [-comments TEXT] - approve after uploading the signed PDF")
	cli.println("  verify reject -id ID -reason TEXT [-comments TEXT]  - send a month back to the student")
	cli.println("Documents:")
	cli.println("  pdf signed -id ID [-out FILE] [-open]               - download a signed month")
	cli.println("  pdf consolidated [-student ID] [-out FILE] [-open]  - download the consolidated logbook")
	cli.println("  export -out FILE.xlsx [-student ID]                 - export the logbook to a spreadsheet")
	cli.println("Final stage:")
	cli.println("  submissions status [-student ID]                    - show uploaded marksheets and presentation")
	cli.println("  submissions marksheet -kind KIND -file FILE         - upload a marksheet")
	cli.println("  submissions presentation -file FILE                 - upload the presentation")
	cli.println("  submissions notify                                  - tell the coordinator everything is in")
	cli.println("  marks show [-student ID]                            - show the final marks")
	cli.println("  marks academic -student ID -marks N                 - award the academic marks (0-60)")
	cli.println("  marks industry -student ID -marks N                 - award the industry marks (0-40)")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(ctx, rest)
	case "logout":
		return cli.logout()
	case "whoami":
		return cli.whoami()
	case "placement":
		return cli.placementCmd(ctx, rest)
	case "logbook":
		return cli.logbookCmd(ctx, rest)
	case "verify":
		return cli.verifyCmd(ctx, rest)
	case "pdf":
		return cli.pdfCmd(ctx, rest)
	case "export":
		return cli.export(ctx, rest)
	case "submissions":
		return cli.submissionsCmd(ctx, rest)
	case "marks":
		return cli.marksCmd(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

// report prints err the way a front end would show it; unexpected errors also reach the logger.
func (cli *commandLine) report(err error) {
	fmt.Fprintf(os.Stderr, "error: %s\n", core.UserMessage(err, ""))
	if !expected(err) {
		cli.logger.Error(err.Error(), err)
	}
}

func expected(err error) bool {
	var vErr *core.ValidationError
	var tErr *core.TransportError
	if _, ok := core.AsAPIError(err); ok || errors.As(err, &vErr) || errors.As(err, &tErr) {
		return true
	}
	switch errors.Cause(err) {
	case session.ErrNotAuthenticated, session.ErrForbidden, errStudentRequired:
		return true
	}
	return false
}

func (cli *commandLine) close() {
	if err := cli.previews.Close(); err != nil {
		cli.logger.Warn("releasing previews", err)
	}
}

func (cli *commandLine) println(a ...interface{}) {
	fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	fmt.Fprintf(cli.out, format, a...)
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses args into fs; -h and bad flags print the usage and yield errHelp.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	return nil
}

// usage prints the usage of fs and yields errHelp.
func usage(fs *flag.FlagSet) error {
	fs.Usage()
	return errHelp
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// subcommand splits a command group's arguments into its subcommand and the rest.
func (cli *commandLine) subcommand(args []string) (string, []string, error) {
	if len(args) == 0 {
		cli.printUsage()
		return "", nil, errHelp
	}
	return args[0], args[1:], nil
}

// studentOf resolves whose records a command is about: students always see their own.
func studentOf(s session.Session, studentID string) (string, error) {
	if s.User.IsStudent() {
		return s.User.ID, nil
	}
	if studentID = core.CleanString(studentID); studentID == "" {
		return "", errStudentRequired
	}
	return studentID, nil
}

func (cli *commandLine) confirm(prompt string) bool {
	answer := strings.ToLower(strings.TrimSpace(promptFunc(cli.out, prompt+" [y/N]: ")))
	return answer == "y" || answer == "yes"
}

func readLine(out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

func readPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func openInViewer(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return errors.Wrap(cmd.Start(), "opening viewer")
}
