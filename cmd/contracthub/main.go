package main

import "github.com/contracthub/contracthub/cmd/contracthub/cmd"

func main() {
	cmd.Execute()
}
