package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/repositories"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db   *gorm.DB
	repo repositories.Repository
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                    - create or update the database tables")
	fmt.Fprintln(cli.out, "  resetpassword -rf RF       - drop the password so the RF works again")
	fmt.Fprintln(cli.out, "  setpassword -rf RF         - set a professor's password (prompted next)")
	fmt.Fprintln(cli.out, "  import -file cadastro.xlsx - upsert professors and students from a workbook")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordRF := resetPasswordCmd.String("rf", "", "The professor's RF.")

	setPasswordCmd := flag.NewFlagSet("setpassword", flag.ContinueOnError)
	setPasswordRF := setPasswordCmd.String("rf", "", "The professor's RF. The password will be prompted next.")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importFile := importCmd.String("file", "", "Workbook with the professores and alunos sheets.")

	for _, fs := range []*flag.FlagSet{resetPasswordCmd, setPasswordCmd, importCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		return cli.migrate()

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordRF == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordRF)

	case "setpassword":
		if err := setPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setPasswordRF == "" {
			setPasswordCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			setPasswordCmd.Usage()
			return errHelp
		}
		return cli.setPassword(*setPasswordRF, string(pwd))

	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importRoster(*importFile)

	default:
		cli.printUsage()
		return errHelp
	}
}
