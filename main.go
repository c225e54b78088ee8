package main

import "github.com/KaramelBytes/tbvplot/cmd"

func main() {
	cmd.Execute()
}
