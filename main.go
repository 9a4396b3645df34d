package main

import "github.com/rockerboo/ae-score/cmd"

func main() {
	cmd.Execute()
}
