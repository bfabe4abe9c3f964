package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/importer"
	"go-elearn-app/internal/logger"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// AdminCreator creates or promotes administrator accounts.
type AdminCreator interface {
	CreateAdmin(ctx context.Context, username, email, password string) (*data.User, error)
}

// LessonImporter loads lessons from a spreadsheet.
type LessonImporter interface {
	Import(ctx context.Context, cfg importer.Config) (*importer.Result, error)
}

type commandLine struct {
	log     logger.Logger
	out     io.Writer
	migrate func() error
	admins  AdminCreator
	lessons LessonImporter
}

func (cli *commandLine) stdout() io.Writer {
	if cli.out == nil {
		return os.Stdout
	}
	return cli.out
}

func (cli *commandLine) printUsage() {
	w := cli.stdout()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  migrate - apply pending database migrations")
	fmt.Fprintln(w, "  createadmin -username USERNAME -email EMAIL - create or promote an administrator")
	fmt.Fprintln(w, "  import-lessons -course ID -file FILE [-sheet SHEET] [-start-row N] - load lessons from .xlsx or .csv")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminUname := createAdminCmd.String("username", "", "The administrator's username. The password will be prompted next.")
	createAdminEmail := createAdminCmd.String("email", "", "The administrator's email.")

	importCmd := flag.NewFlagSet("import-lessons", flag.ContinueOnError)
	importCourse := importCmd.Int64("course", 0, "ID of the course receiving the lessons.")
	importFile := importCmd.String("file", "", "Path to the .xlsx or .csv file.")
	importSheet := importCmd.String("sheet", "", "Sheet to read; the first sheet by default.")
	importStart := importCmd.Int("start-row", 2, "First data row; 2 skips a header row.")

	switch args[1] {
	case "migrate":
		if err := cli.migrate(); err != nil {
			return err
		}
		cli.log.Info("Migrations applied successfully.")
		return nil

	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminUname == "" || *createAdminEmail == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.stdout(), "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.stdout())
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAdminCmd.Usage()
			return errHelp
		}
		user, err := cli.admins.CreateAdmin(context.Background(), *createAdminUname, *createAdminEmail, string(pwd))
		if err != nil {
			return err
		}
		cli.log.Info(fmt.Sprintf("Administrator %s (id %d) is ready.", user.Username, user.ID))
		return nil

	case "import-lessons":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importCourse <= 0 || *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		result, err := cli.lessons.Import(context.Background(), importer.Config{
			FilePath:  *importFile,
			CourseID:  *importCourse,
			SheetName: *importSheet,
			StartRow:  *importStart,
		})
		if err != nil {
			return err
		}
		w := cli.stdout()
		fmt.Fprintf(w, "Processed %d rows: %d created, %d updated, %d errors\n",
			result.TotalProcessed, result.Created, result.Updated, len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}
