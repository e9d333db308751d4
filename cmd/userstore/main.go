// Command userstore inspects and maintains a JSONL user account store.
package main

import "github.com/mesh-intelligence/userstore/internal/cli"

func main() {
	cli.Execute()
}
