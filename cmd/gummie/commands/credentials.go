package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	envUsername = "GUMMIE_USERNAME"
	envPassword = "GUMMIE_PASSWORD"
)

type promptFunc func(label string, secret bool) (string, error)

// resolveCredentials takes each credential from the config, then the
// environment, then prompts for it.
func resolveCredentials(config Config, getenv func(string) string, prompt promptFunc) (string, string, error) {
	username := config.Username
	if username == "" {
		username = getenv(envUsername)
	}
	if username == "" {
		var err error
		username, err = prompt("username", false)
		if err != nil {
			return "", "", err
		}
	}

	password := config.Password
	if password == "" {
		password = getenv(envPassword)
	}
	if password == "" {
		var err error
		password, err = prompt("password", true)
		if err != nil {
			return "", "", err
		}
	}

	if username == "" || password == "" {
		return "", "", fmt.Errorf("username and password are required")
	}
	return username, password, nil
}

var stdin = bufio.NewReader(os.Stdin)

func promptStdin(label string, secret bool) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)

	fd := int(os.Stdin.Fd())
	if secret && term.IsTerminal(fd) {
		value, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", label, err)
		}
		return string(value), nil
	}

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
