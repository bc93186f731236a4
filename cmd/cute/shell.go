// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/bpowers/cute"
)

var errQuit = errors.New("quit")

type command struct {
	args  string
	help  string
	nargs int // -1 for "zero or one"
	run   func(sh *shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"set":     {"KEY VALUE", "insert a new key", 2, (*shell).set},
		"replace": {"KEY VALUE", "insert or overwrite a key", 2, (*shell).replace},
		"get":     {"KEY", "print the value of a key", 1, (*shell).get},
		"has":     {"KEY", "report whether a key is present", 1, (*shell).has},
		"del":     {"KEY", "delete a key", 1, (*shell).del},
		"load":    {"KEY FILE", "store the contents of a file under a key", 2, (*shell).load},
		"save":    {"KEY FILE", "write a key's value to a file", 2, (*shell).save},
		"head":    {"", "move the cursor to the oldest record", 0, (*shell).head},
		"tail":    {"", "move the cursor to the newest record", 0, (*shell).tail},
		"next":    {"", "print the record at the cursor and step towards the tail", 0, (*shell).next},
		"prev":    {"", "print the record at the cursor and step towards the head", 0, (*shell).prev},
		"scan":    {"[LIMIT]", "print records from the head in insertion order", -1, (*shell).scan},
		"rscan":   {"[LIMIT]", "print records from the tail in reverse order", -1, (*shell).rscan},
		"check":   {"", "verify the index file's chains and list", 0, (*shell).check},
		"stats":   {"", "print file sizes", 0, (*shell).stats},
		"flush":   {"", "sync both files to disk", 0, (*shell).flush},
		"help":    {"", "print this message", 0, (*shell).help},
		"exit":    {"", "quit", 0, (*shell).exit},
	}
	commands["quit"] = commands["exit"]
}

// shell reads commands line by line and applies them to db.
type shell struct {
	db     *cute.DB
	out    io.Writer
	prompt string
}

func newShell(db *cute.DB, out io.Writer) *shell {
	return &shell{db: db, out: out}
}

// run executes commands from in until EOF or exit.  Command errors are
// printed and don't stop the shell.
func (sh *shell) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, sh.prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		err := sh.exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		} else if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func (sh *shell) exec(line string) error {
	words, err := shellquote.Split(line)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if len(words) == 0 {
		return nil
	}

	name, args := strings.ToLower(words[0]), words[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try 'help')", name)
	}
	if cmd.nargs >= 0 && len(args) != cmd.nargs || cmd.nargs < 0 && len(args) > 1 {
		return fmt.Errorf("usage: %s %s", name, cmd.args)
	}
	return cmd.run(sh, args)
}

func (sh *shell) set(args []string) error {
	if err := sh.db.Set([]byte(args[0]), []byte(args[1])); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "OK")
	return nil
}

func (sh *shell) replace(args []string) error {
	if err := sh.db.Replace([]byte(args[0]), []byte(args[1])); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "OK")
	return nil
}

func (sh *shell) get(args []string) error {
	v, err := sh.db.Get([]byte(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%s\n", v)
	return nil
}

func (sh *shell) has(args []string) error {
	ok, err := sh.db.Has([]byte(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, ok)
	return nil
}

func (sh *shell) del(args []string) error {
	if err := sh.db.Delete([]byte(args[0])); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "OK")
	return nil
}

func (sh *shell) load(args []string) error {
	value, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	if err := sh.db.Replace([]byte(args[0]), value); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "OK (%d bytes)\n", len(value))
	return nil
}

func (sh *shell) save(args []string) error {
	value, err := sh.db.Get([]byte(args[0]))
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], value, 0644); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "OK (%d bytes)\n", len(value))
	return nil
}

func (sh *shell) head([]string) error {
	sh.db.MoveHead()
	return nil
}

func (sh *shell) tail([]string) error {
	sh.db.MoveTail()
	return nil
}

func (sh *shell) next([]string) error {
	return sh.step(sh.db.Next)
}

func (sh *shell) prev([]string) error {
	return sh.step(sh.db.Prev)
}

func (sh *shell) step(move func() ([]byte, []byte, error)) error {
	k, v, err := move()
	if err == io.EOF {
		fmt.Fprintln(sh.out, "(end)")
		return nil
	} else if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%q: %q\n", k, v)
	return nil
}

func (sh *shell) scan(args []string) error {
	sh.db.MoveHead()
	return sh.dump(args, sh.db.Next)
}

func (sh *shell) rscan(args []string) error {
	sh.db.MoveTail()
	return sh.dump(args, sh.db.Prev)
}

func (sh *shell) dump(args []string, move func() ([]byte, []byte, error)) error {
	limit := -1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("bad limit %q", args[0])
		}
		limit = n
	}
	count := 0
	for ; limit < 0 || count < limit; count++ {
		k, v, err := move()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "%q: %q\n", k, v)
	}
	fmt.Fprintf(sh.out, "(%d records)\n", count)
	return nil
}

func (sh *shell) check([]string) error {
	report, err := sh.db.Check()
	if err != nil {
		return err
	}
	printReport(sh.out, &report)
	return nil
}

func printReport(w io.Writer, report *cute.Report) {
	fmt.Fprintf(w, "records:       %d (%d live, %d deleted)\n", report.Records, report.Live, report.Deleted)
	fmt.Fprintf(w, "used buckets:  %d\n", report.UsedBuckets)
	fmt.Fprintf(w, "longest chain: %d\n", report.LongestChain)
	fmt.Fprintf(w, "average chain: %.3f\n", report.AverageChain)
	fmt.Fprintf(w, "load factor:   %.3f\n", report.LoadFactor)
	if report.OK() {
		fmt.Fprintln(w, "OK")
		return
	}
	for _, p := range report.Problems {
		fmt.Fprintf(w, "problem: %s\n", p)
	}
}

func (sh *shell) stats([]string) error {
	stats, err := sh.db.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "buckets:     %d\n", stats.Entries)
	fmt.Fprintf(sh.out, "records:     %d\n", stats.Records)
	fmt.Fprintf(sh.out, "index bytes: %d\n", stats.IndexBytes)
	fmt.Fprintf(sh.out, "data bytes:  %d\n", stats.DataBytes)
	return nil
}

func (sh *shell) flush([]string) error {
	return sh.db.Flush()
}

func (sh *shell) help([]string) error {
	names := []string{
		"set", "replace", "get", "has", "del", "load", "save",
		"head", "tail", "next", "prev", "scan", "rscan",
		"check", "stats", "flush", "help", "exit",
	}
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(sh.out, "  %-24s %s\n", strings.TrimSpace(name+" "+cmd.args), cmd.help)
	}
	return nil
}

func (sh *shell) exit([]string) error {
	return errQuit
}
