package main

import "dcache-admin/cmd"

func main() {
	cmd.Execute()
}
