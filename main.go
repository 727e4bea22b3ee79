package main

import "github.com/Layr-Labs/txcontext/cmd"

func main() {
	cmd.Execute()
}
