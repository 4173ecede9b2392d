package main

import "github.com/ruuvi/oaskit/cmd"

func main() {
	cmd.Execute()
}
