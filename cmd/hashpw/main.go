// Command hashpw prints a stored password hash for a password typed at the
// terminal.
//
//	hashpw [-cost 8]
//	hashpw -legacy [-iterations 260000]
package main

import (
	"os"

	"github.com/dmitrijs2005/marketplace/internal/hashpw"
)

func main() {
	os.Exit(hashpw.Run(os.Args[1:], os.Stdout, os.Stderr))
}
