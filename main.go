package main

import "github.com/gaurav-prasanna/obsidit/cmd"

func main() {
	cmd.Execute()
}
