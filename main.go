package main

import "content-importer/cmd"

func main() {
	cmd.Execute()
}
