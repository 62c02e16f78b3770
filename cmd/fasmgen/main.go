package main

import "github.com/OpenTraceLab/OpenTraceFASM/cmd/fasmgen/cmd"

func main() {
	cmd.Execute()
}
