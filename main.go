package main

import "github.com/stacksorbit/stacksorbit/cmd"

func main() {
	cmd.Execute()
}
