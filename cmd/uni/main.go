package main

import "github.com/unievents/uni/cmd/uni/cmd"

func main() {
	cmd.Execute()
}
