package main

import (
	"dr-ipconfig/cmd"
)

func main() {
	cmd.Execute()
}
