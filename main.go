package main

import "github.com/frahmantamala/transport-management/cmd"

func main() {
	cmd.Execute()
}
