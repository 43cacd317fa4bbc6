// Command hash-generator produces bcrypt hashes for API keys so they can be
// listed in the auth.api_key_hashes configuration. Keys are taken from the
// command line, or read one per line from stdin when no arguments are given.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	keys := flag.Args()
	if len(keys) == 0 {
		keys = readKeys(os.Stdin)
	}

	if len(keys) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-cost N] key [key ...]")
		os.Exit(1)
	}

	// Print only the hashes so keys never end up in shell history or logs
	// beyond where the operator already typed them.
	for _, key := range keys {
		hash, err := bcrypt.GenerateFromPassword([]byte(key), *cost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating hash: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(hash))
	}
}

// readKeys collects one key per non-empty line.
func readKeys(r io.Reader) []string {
	var keys []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			keys = append(keys, line)
		}
	}
	return keys
}
