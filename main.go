package main

import "github.com/codeup/novabook/cmd"

func main() {
	cmd.Execute()
}
