package main

import "github.com/gaurav-prasanna/redditrip/cmd"

func main() {
	cmd.Execute()
}
