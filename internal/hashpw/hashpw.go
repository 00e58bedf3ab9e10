// Package hashpw implements the hashpw command: it reads a password from
// the terminal and prints a stored hash for it, for seeding users and
// testing migrated accounts.
package hashpw

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/marketplace/internal/common"
	"github.com/dmitrijs2005/marketplace/internal/server/password"
	"golang.org/x/term"
)

const (
	defaultCost       = 8
	defaultIterations = 260000
	legacySaltBytes   = 6
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errMismatch = errors.New("passwords do not match")

type Options struct {
	Cost       int
	Legacy     bool
	Iterations int
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string, output io.Writer) (Options, error) {
	var o Options

	fs := flag.NewFlagSet("hashpw", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&o.Cost, "cost", defaultCost, "bcrypt cost")
	fs.BoolVar(&o.Legacy, "legacy", false, "produce a pbkdf2_sha256 hash in the legacy format")
	fs.IntVar(&o.Iterations, "iterations", defaultIterations, "PBKDF2 iterations for -legacy")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	return o, nil
}

// GetPassword prompts on w and reads a password twice without echo. The
// returned slice should be wiped by the caller.
func GetPassword(w io.Writer) ([]byte, error) {
	pw, err := prompt(w, "Enter password: ")
	if err != nil {
		return nil, err
	}
	confirm, err := prompt(w, "Confirm password: ")
	defer common.WipeByteArray(confirm)
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	if !bytes.Equal(pw, confirm) {
		common.WipeByteArray(pw)
		return nil, errMismatch
	}
	return pw, nil
}

func prompt(w io.Writer, text string) ([]byte, error) {
	if _, err := fmt.Fprint(w, text); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// Hash builds the stored form of plaintext according to o.
func Hash(plaintext string, o Options) (string, error) {
	if !o.Legacy {
		return password.HashModern(plaintext, o.Cost)
	}

	salt, err := common.MakeRandHexString(legacySaltBytes)
	if err != nil {
		return "", err
	}
	return password.HashLegacy(plaintext, salt, o.Iterations)
}

// Run executes the command and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	o, err := ParseFlags(args, stderr)
	if err != nil {
		return 2
	}

	pw, err := GetPassword(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer common.WipeByteArray(pw)

	if len(pw) == 0 {
		fmt.Fprintln(stderr, "error: empty password")
		return 1
	}

	stored, err := Hash(string(pw), o)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, stored)
	return 0
}
