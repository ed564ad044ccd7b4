package main

import "lintrun/cmd"

func main() {
	cmd.Execute()
}
