package main

import "github.com/ridoystarlord/etlforge/cmd"

func main() {
	cmd.Execute()
}
