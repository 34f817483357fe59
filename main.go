package main

import (
	_ "embed"
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"io/fs"
	"log"
	"os"
	"print-vault/config"
	"print-vault/database"
	"print-vault/utils"
	"strings"
	"time"
)

//goland:noinspection GoUnnecessarilyExportedIdentifiers
var AppVersion = "1.0"

var usageText = `Usage: ./print-vault command.
Available commands:
  set_root model|ingestion <path>
  set <setting> <value>
  scan [full|full_sync|add_only] [path]
  sync
  status
  ingest
  categorize
  import <path> <category>
  tidy
  watch
  serve
`

//go:embed config.yaml
var defaultConfigData []byte

func main() {
	err := godotenv.Load()

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal(err)
	}

	c, err := config.Load(defaultConfigData)

	if err != nil {
		log.Fatal(err)
	}

	err = utils.SetupLogger(c.LogFilePath, c.IsDebug)

	if err != nil {
		log.Fatal(err)
	}

	defer utils.SyncLogger()

	db, err := database.Open(c)

	if err != nil {
		log.Fatal(err)
	}

	ctx := newContext(c, db, utils.Logger())

	debugFormat := ""

	if c.IsDebug {
		debugFormat = " (debug)"
	}

	utils.ConsoleAndLogPrintf("Print Vault version %s%s. Using %s for file operations", AppVersion, debugFormat, utils.Pluralize("thread", c.MaxConcurrentFileOperations))
	startTime := time.Now()

	if len(os.Args) < 2 {
		utils.ConsoleAndLogPrintf("A command must be specified. %s", usageText)
		return
	}

	err = ctx.runCommand(strings.ToLower(os.Args[1]), os.Args[2:])

	if err != nil {
		utils.ConsoleAndLogPrintf("Error: %v", err)
	}

	utils.ConsoleAndLogPrintf("Finished in %s", utils.FormatDuration(time.Since(startTime)))
}

func (ctx *Context) runCommand(command string, args []string) error {
	switch command {
	case "set_root":
		if len(args) != 2 {
			return fmt.Errorf("%w: set_root needs a kind and a path", ErrMissingArgument)
		}

		return ctx.SetRoot(args[0], args[1])

	case "set":
		if len(args) != 2 {
			return fmt.Errorf("%w: set needs a setting and a value", ErrMissingArgument)
		}

		return ctx.SetSetting(args[0], args[1])

	case "scan":
		mode, root := "", ""

		if len(args) > 0 {
			mode = args[0]
		}

		if len(args) > 1 {
			root = args[1]
		}

		return ctx.Scan(mode, root)

	case "sync":
		return ctx.Scan("full_sync", "")

	case "status":
		return ctx.Status()

	case "ingest":
		return ctx.ListIngestion()

	case "categorize":
		return ctx.CategorizeIngestion()

	case "import":
		if len(args) != 2 {
			return fmt.Errorf("%w: import needs a path and a category", ErrMissingArgument)
		}

		return ctx.Import(args[0], args[1])

	case "tidy":
		return ctx.TidyIngestion()

	case "watch":
		return ctx.Watch()

	case "serve":
		return ctx.Serve()
	}

	return fmt.Errorf("%w: \"%s\". %s", ErrUnknownCommand, command, usageText)
}
