// Command passwd administers the gatekeeper password file.
//
// Usage:
//
//	passwd [-p file] init
//	passwd [-p file] add <user>
//	passwd [-p file] change <user>
//	passwd [-p file] check <user>
//	passwd [-p file] list
//
// The password file location follows the server configuration: the -p flag,
// STORAGE_PASSWD_FILE, or the JSON config file.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/MKhiriev/go-gatekeeper/internal/config"
	"github.com/MKhiriev/go-gatekeeper/internal/crypto"
	"github.com/MKhiriev/go-gatekeeper/internal/logger"
	"github.com/MKhiriev/go-gatekeeper/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

func main() {
	cfg, err := config.GetStructuredConfig("passwd", os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.NewLogger("gatekeeper-passwd")
	log.Logger = log.Level(zerolog.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{
		path:         cfg.Storage.PasswdFile,
		store:        store.NewPasswdStore(cfg.Storage.PasswdFile, crypto.NewPasswordHasher(), log),
		readPassword: terminalPrompt(os.Stdin, os.Stderr),
		out:          os.Stdout,
	}

	if err := c.run(ctx, cfg.Args); err != nil {
		fmt.Fprintln(os.Stderr, "passwd:", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// terminalPrompt reads passwords without echo when in is a terminal and as
// plain lines otherwise, so the tool can be scripted.
func terminalPrompt(in *os.File, prompts io.Writer) func(prompt string) (string, error) {
	fd := int(in.Fd())
	lines := bufio.NewReader(in)

	return func(prompt string) (string, error) {
		fmt.Fprint(prompts, prompt)

		if term.IsTerminal(fd) {
			pw, err := term.ReadPassword(fd)
			fmt.Fprintln(prompts)
			if err != nil {
				return "", err
			}
			return string(pw), nil
		}

		line, err := lines.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
