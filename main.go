package main

import "github.com/jmorland/jcsh/cmd"

func main() {
	cmd.Execute()
}
