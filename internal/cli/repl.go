package cli

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Load(ctx context.Context, path string) error
	List(ctx context.Context, all bool) error
	SetNoise(on bool)
	Env(ctx context.Context, name string) error
	SetUser(id string)
	SetParent(id string)
	Upload(ctx context.Context) error
	History(ctx context.Context, n int) error
	HistoryOf(ctx context.Context, fingerprint string) error
	ClearHistory(ctx context.Context) error
}

const helpText = `Available commands:
  load <zip>         open an archive
  list [all]         list files (all: include system files)
  noise on|off       show or hide system files
  env [name]         show or switch the environment profile
  user <id>          set the user id
  parent <id>        set the parent folder id
  upload             upload every pending PDF
  history [n|clear]  show the last n uploads, or clear the history
  history <md5>      show every upload of the file with that fingerprint
  exit | quit        leave the program`

const defaultHistory = 20

// isFingerprint reports whether s looks like a hex MD5 digest.
func isFingerprint(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func newScanner(in io.Reader) *bufio.Scanner {
	return bufio.NewScanner(in)
}

// runREPL reads commands line by line from scanner and dispatches them to a.
// The first token is the command, the rest are its arguments. The loop ends
// on EOF or on "exit"/"quit".
//
// Command errors are printed and never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("kb %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "load":
			if len(args) == 0 {
				printlnFn("Usage: load <zip>")
				continue
			}
			err = a.Load(ctx, strings.Join(args, " "))

		case "l", "list":
			err = a.List(ctx, len(args) > 0 && args[0] == "all")

		case "noise":
			if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
				printlnFn("Usage: noise on|off")
				continue
			}
			a.SetNoise(args[0] == "on")

		case "env":
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			err = a.Env(ctx, name)

		case "user":
			if len(args) == 0 {
				printlnFn("Usage: user <id>")
				continue
			}
			a.SetUser(args[0])

		case "parent":
			if len(args) == 0 {
				printlnFn("Usage: parent <id>")
				continue
			}
			a.SetParent(args[0])

		case "upload":
			err = a.Upload(ctx)

		case "history":
			switch {
			case len(args) == 0:
				err = a.History(ctx, defaultHistory)
			case args[0] == "clear":
				err = a.ClearHistory(ctx)
			case isFingerprint(args[0]):
				err = a.HistoryOf(ctx, strings.ToLower(args[0]))
			default:
				n, convErr := strconv.Atoi(args[0])
				if convErr != nil || n <= 0 {
					printlnFn("Usage: history [n|clear|<md5>]")
					continue
				}
				err = a.History(ctx, n)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
