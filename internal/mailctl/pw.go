package mailctl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/edvin/mailpanel/internal/passwd"
)

// ErrVerifyFailed is returned by Pw when -t does not match the password.
var ErrVerifyFailed = errors.New("password does not match")

// PwOptions mirror the flags of "mailctl pw".
type PwOptions struct {
	// Scheme overrides the default scheme. Empty uses the configured one.
	Scheme string
	// Password is the plaintext. Empty reads one line from the input.
	Password string
	// Test is an encoded credential to check Password against.
	Test string
}

// Pw encodes a password, or verifies it against opts.Test, and prints the
// result the way "doveadm pw" does.
func Pw(opts PwOptions, defaultScheme passwd.Scheme, in io.Reader, out io.Writer) error {
	scheme := defaultScheme
	if opts.Scheme != "" {
		s, err := passwd.ParseScheme(opts.Scheme)
		if err != nil {
			return err
		}
		scheme = s
	}

	plaintext := opts.Password
	if plaintext == "" && in != nil {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		plaintext = strings.TrimRight(line, "\r\n")
	}

	if opts.Test != "" {
		ok, err := passwd.Verify(plaintext, opts.Test)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVerifyFailed
		}
		fmt.Fprintf(out, "%s (verified)\n", opts.Test)
		return nil
	}

	encoded, err := passwd.NewCodec(scheme).Encode(plaintext)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, encoded)
	return nil
}

// ListSchemes prints every supported scheme, marking the default.
func ListSchemes(defaultScheme passwd.Scheme, out io.Writer) {
	for _, s := range passwd.Schemes() {
		if s == defaultScheme {
			fmt.Fprintf(out, "%s (default)\n", s)
			continue
		}
		fmt.Fprintln(out, s)
	}
}
