package main

import "github.com/artenis/openjobboard/cmd"

func main() {
	cmd.Execute()
}
