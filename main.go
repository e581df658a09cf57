package main

import "github.com/pranaycb/epay-gateway-bridge/cmd"

func main() {
	cmd.Execute()
}
