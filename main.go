package main

import "querydraft/cmd"

func main() {
	cmd.Execute()
}
