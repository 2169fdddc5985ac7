package main

import "github.com/parlorchat/parlor/cmd/parlorctl/cmd"

func main() {
	cmd.Execute()
}
