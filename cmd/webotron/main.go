package main

import (
	"github.com/webotron/webotron/cmd/webotron/cmd"
)

func main() {
	cmd.Execute()
}
