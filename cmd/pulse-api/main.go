package main

import "pulse-backend/cmd"

func main() {
	cmd.Run()
}
