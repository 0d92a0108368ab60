package main

import "github.com/example/court-booking/cmd"

func main() {
	cmd.Execute()
}
