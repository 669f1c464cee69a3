// Command dispatchctl is the operator tool: schema migrations, access tokens
// and bulk agent configuration import.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
