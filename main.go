package main

import "github.com/faceforge/faceforge/cmd"

func main() {
	cmd.Execute()
}
