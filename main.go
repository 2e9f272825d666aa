package main

import "github.com/KaramelBytes/insightforge-cli/cmd"

func main() {
	cmd.Execute()
}
