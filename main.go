package main

import "source-resolver/cmd"

func main() {
	cmd.Execute()
}
