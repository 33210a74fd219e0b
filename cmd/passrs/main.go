package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"passrs/internal/clipboard"
	"passrs/internal/config"
	"passrs/internal/crypto"
	"passrs/internal/storage"
	"passrs/internal/ui"
)

const (
	exitOK   = 0
	exitLoad = 1
	exitSave = 2
)

const helpText = `    passrs ~ Terminal Password Manager & Authenticator

Arguments:
  --file, -f FILE     Data file to use, possibly encrypted
  --totp, -t          Print every TOTP name and current code, tab separated
  --pass, -p          Print every password name and password, tab separated
  --history           Print the save journal of the data file
  --help, -h          Show this help
  --help-gui, -H      Show the key bindings of the interactive view

Environment:
  HOME                The default data file is $HOME/.local/share/passrs
  PASSRS_FILE         Data file, overridden by --file
  PASSRS_PASS         Password to use instead of asking; set it empty for no encryption
  PASSRS_COPY         Shell command that receives copied values on stdin
  PASSRS_CONFIG       Config file, default $XDG_CONFIG_HOME/passrs/config.toml
  PASSRS_LOG          File to write the session log to

Exit codes:
  0                   Success, or nothing to do
  1                   The data file could not be loaded or decrypted
  2                   The data file could not be encrypted or saved
`

const helpGUIText = `    passrs ~ Key Bindings

Main view:
  Tab                 Switch between passwords and TOTP codes
  Up/Down/j/k         Select the previous/next item
  Home/End/g/G        Select the first/last item
  J/K                 Move the selected item down/up
  d                   Mark the selected item for deletion on exit, again to unmark
  v                   Show the values of every item, not only the selected one
  n                   Show the next TOTP code instead of the current one
  y                   Copy the selected password or code
  e                   Edit the selected item
  o                   Add a new item after the selected one
  p                   Change the password of the data file
  c                   Cycle the accent colour
  Esc/q               Save and exit, dropping items marked for deletion
  Ctrl+C              Exit without saving

Edit view:
  Up/Down             Select the previous/next field
  Left/Right/Home/End Move the cursor in a text field
  Left/Right          Decrease/increase a number field
  Enter               Keep the changes
  Esc                 Throw the changes away

Password prompt:
  Enter               Use the typed password, or no encryption when empty
  Esc                 Cancel
`

type printMode int

const (
	printNone printMode = iota
	printTOTP
	printPass
)

type options struct {
	file    string
	print   printMode
	history bool
	help    bool
	helpGUI bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseArgs(args []string) (options, error) {
	var o options
	var totp, pass bool

	fs := flag.NewFlagSet("passrs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.file, "file", "", "data file")
	fs.StringVar(&o.file, "f", "", "data file")
	fs.BoolVar(&totp, "totp", false, "print TOTP codes")
	fs.BoolVar(&totp, "t", false, "print TOTP codes")
	fs.BoolVar(&pass, "pass", false, "print passwords")
	fs.BoolVar(&pass, "p", false, "print passwords")
	fs.BoolVar(&o.history, "history", false, "print the save journal")
	fs.BoolVar(&o.help, "help", false, "help")
	fs.BoolVar(&o.help, "h", false, "help")
	fs.BoolVar(&o.helpGUI, "help-gui", false, "key binding help")
	fs.BoolVar(&o.helpGUI, "H", false, "key binding help")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	switch {
	case pass:
		o.print = printPass
	case totp:
		o.print = printTOTP
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Unknown argument (%v), see --help, -h\n", err)
		return exitOK
	}
	if opts.help {
		fmt.Fprint(stdout, helpText)
		return exitOK
	}
	if opts.helpGUI {
		fmt.Fprint(stdout, helpGUIText)
		return exitOK
	}

	warn := newWarnLogger(stderr)

	configPath := config.Path()
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		if !firstLaunch {
			fmt.Fprintf(stderr, "Cannot load config: %v\n", err)
			return exitLoad
		}
		warn.Warn("could not write default config", "path", configPath, "error", err)
	}

	session, err := config.Resolve(cfg, opts.file)
	if err != nil {
		fmt.Fprintln(stderr, "Cannot find a data file:", err)
		return exitLoad
	}

	logger, closeLog := sessionLogger(session.LogFile, warn)
	defer closeLog()
	logger.Info("session start", "path", session.DataPath, "config", configPath)

	file := &storage.File{Path: session.DataPath, Logger: logger}

	if opts.history {
		return printHistory(ctx, session, stdout, stderr)
	}
	if opts.print != printNone {
		return printRecords(session, file, opts.print, stdout, stderr)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(stderr, "passrs needs a terminal, see --help for --totp and --pass")
		return exitLoad
	}

	res, err := ui.Run(ctx, session, ui.Deps{
		Load:      file.Load,
		Clipboard: clipboard.New(session.CopyCommand),
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error running program: %v\n", err)
		return exitLoad
	}
	if res.Err != nil {
		reportLoadError(stderr, res.Err)
		return exitLoad
	}
	if res.Aborted {
		return exitOK
	}
	if !res.Dirty {
		fmt.Fprintln(stderr, "Nothing changed, not saving")
		return exitOK
	}
	return save(ctx, session, file, res, warn, stderr)
}

func save(ctx context.Context, session config.Session, file *storage.File, res ui.Result, warn *slog.Logger, stderr io.Writer) int {
	if session.JournalPath != "" {
		journal, err := storage.OpenJournal(session.JournalPath, session.JournalKeep)
		if err != nil {
			warn.Warn("save journal unavailable", "path", session.JournalPath, "error", err)
		} else {
			defer journal.Close()
			file.Journal = journal
		}
	}

	if err := file.Save(ctx, res.Store, res.Key); err != nil {
		switch {
		case errors.Is(err, crypto.ErrEncryption):
			fmt.Fprintln(stderr, "Could not encrypt data:", err)
		default:
			fmt.Fprintln(stderr, "Could not save file:", err)
		}
		return exitSave
	}
	return exitOK
}

func printRecords(session config.Session, file *storage.File, mode printMode, stdout, stderr io.Writer) int {
	if session.Password == nil {
		fmt.Fprintln(stderr, "Print mode requires a password to be specified with PASSRS_PASS")
		return exitLoad
	}

	loaded, err := file.Load(crypto.PasswordKey(*session.Password))
	if err != nil {
		reportLoadError(stderr, err)
		return exitLoad
	}
	if loaded.Missing {
		fmt.Fprintln(stderr, "Cannot read file, making new password set")
	}

	switch mode {
	case printPass:
		for _, p := range loaded.Store.Passwords {
			fmt.Fprintf(stdout, "%s\t%s\n", p.Name, p.Password)
		}
	case printTOTP:
		now := time.Now()
		for i := range loaded.Store.TOTPs {
			rec := &loaded.Store.TOTPs[i]
			rec.Refresh(now)
			fmt.Fprintf(stdout, "%s\t%s\n", rec.Name, rec.Code(false))
		}
	}
	return exitOK
}

func printHistory(ctx context.Context, session config.Session, stdout, stderr io.Writer) int {
	if session.JournalPath == "" {
		fmt.Fprintln(stderr, "The save journal is disabled in the config")
		return exitLoad
	}
	journal, err := storage.OpenJournal(session.JournalPath, session.JournalKeep)
	if err != nil {
		fmt.Fprintln(stderr, "Cannot open save journal:", err)
		return exitLoad
	}
	defer journal.Close()

	entries, err := journal.List(ctx, session.DataPath)
	if err != nil {
		fmt.Fprintln(stderr, "Cannot read save journal:", err)
		return exitLoad
	}
	for _, e := range entries {
		fmt.Fprintf(stdout, "%d\t%s\t%d\t%d\t%d\t%t\n",
			e.ID, e.SavedAt.Local().Format(time.DateTime), e.Size, e.Passwords, e.TOTPs, e.Encrypted)
	}
	return exitOK
}

func reportLoadError(stderr io.Writer, err error) {
	var perr *storage.ParseError
	switch {
	case errors.Is(err, crypto.ErrDecryption):
		fmt.Fprintln(stderr, "Cannot decrypt data with provided password")
	case errors.As(err, &perr):
		fmt.Fprintf(stderr, "Cannot parse raw JSON, you might require a password:\n%s\n", perr.Text)
	default:
		fmt.Fprintln(stderr, "Cannot read file:", err)
	}
}

// newWarnLogger reports problems that do not stop the program.
func newWarnLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// sessionLogger writes to path when one is set. The terminal belongs to the
// interactive view, so without a path the session log is dropped.
func sessionLogger(path string, warn *slog.Logger) (*slog.Logger, func()) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if path == "" {
		return discard, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		warn.Warn("cannot open log file", "path", path, "error", err)
		return discard, func() {}
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return logger, func() { f.Close() }
}
