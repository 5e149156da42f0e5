package main

import "achievement-hub/cmd"

func main() {
	cmd.Execute()
}
