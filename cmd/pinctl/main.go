// pinctl is a command line client for the GPIO/IR device control API.
package main

import "github.com/berfenger/irpin2mqtt/internal/cli"

func main() {
	cli.Execute()
}
