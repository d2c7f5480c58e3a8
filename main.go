package main

import "github.com/kozaktomas/emoji-mirror/cmd"

func main() {
	cmd.Execute()
}
