package main

import "github.com/fakeyudi/glint/cmd"

func main() {
	cmd.Execute()
}
