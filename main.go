package main

import "github.com/deepdir/deepdir/cmd"

func main() {
	cmd.Execute()
}
