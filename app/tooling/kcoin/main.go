// This program drives a kcoin node from the command line.
package main

import "github.com/ardanlabs/kcoin/app/tooling/kcoin/cmd"

func main() {
	cmd.Execute()
}
